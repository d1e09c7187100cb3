// Package classes provides the reference WIPI platform classes. Each class
// registers its prototype from init(); importing the package for side
// effects makes the whole set loadable by name.
package classes

import (
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("java/lang/Object", objectProto)
}

func objectProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "()V", Body: objectInit, Flags: wipij.MethodNone},
		},
	}
}

func objectInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return 0, nil
}
