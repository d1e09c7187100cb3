package wipic

import "github.com/jkki-i/wie/internal/core"

// GraphicsMethods builds the graphics module table over the screen canvas.
func GraphicsMethods() []Method {
	return []Method{
		{"MC_grpGetScreenInfo", grpGetScreenInfo},
		{"MC_grpGetScreenWidth", grpGetScreenWidth},
		{"MC_grpGetScreenHeight", grpGetScreenHeight},
		{"MC_grpFillRect", grpFillRect},
		{"MC_grpPutPixel", grpPutPixel},
		{"MC_grpFlushLcd", grpFlushLcd},
	}
}

// grpGetScreenInfo writes the guest-visible screen descriptor: width,
// height, bpp, and a reserved framebuffer pointer.
func grpGetScreenInfo(ctx *Context) (uint32, error) {
	out, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}

	canvas := ctx.Backend().ScreenCanvas()
	words := []uint32{canvas.Width(), canvas.Height(), 32, 0}
	for i, w := range words {
		if err := core.WriteU32(ctx.core, out+uint32(i)*4, w); err != nil {
			return 0, err
		}
	}

	return 0, nil
}

func grpGetScreenWidth(ctx *Context) (uint32, error) {
	return ctx.Backend().ScreenCanvas().Width(), nil
}

func grpGetScreenHeight(ctx *Context) (uint32, error) {
	return ctx.Backend().ScreenCanvas().Height(), nil
}

func grpFillRect(ctx *Context) (uint32, error) {
	var p [5]uint32
	for i := range p {
		v, err := ctx.Param(i)
		if err != nil {
			return 0, err
		}
		p[i] = v
	}
	x, y, w, h, color := p[0], p[1], p[2], p[3], p[4]

	canvas := ctx.Backend().ScreenCanvas()
	for dy := uint32(0); dy < h; dy++ {
		for dx := uint32(0); dx < w; dx++ {
			canvas.SetPixel(x+dx, y+dy, color)
		}
	}

	return 0, nil
}

func grpPutPixel(ctx *Context) (uint32, error) {
	x, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	y, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}
	color, err := ctx.Param(2)
	if err != nil {
		return 0, err
	}

	ctx.Backend().ScreenCanvas().SetPixel(x, y, color)
	return 0, nil
}

func grpFlushLcd(ctx *Context) (uint32, error) {
	if err := ctx.Backend().Repaint(); err != nil {
		return 0, err
	}
	return 0, nil
}
