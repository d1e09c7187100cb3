package classes

import (
	"github.com/jkki-i/wie/internal/log"
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("org/kwis/msp/handset/BackLight", backLightProto)
}

func backLightProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		ParentClass: "java/lang/Object",
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "()V", Body: backLightInit, Flags: wipij.MethodNone},
			{Name: "alwaysOn", Signature: "()V", Body: backLightAlwaysOn, Flags: wipij.MethodStatic},
			{Name: "on", Signature: "(I)V", Body: backLightOn, Flags: wipij.MethodStatic},
		},
	}
}

func backLightInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return 0, nil
}

func backLightAlwaysOn(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	if log.L != nil {
		log.L.Debug("BackLight.alwaysOn")
	}
	return 0, nil
}

func backLightOn(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	if log.L != nil {
		log.L.Debug("BackLight.on", log.Size(args[1]))
	}
	return 0, nil
}
