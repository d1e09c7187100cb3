package wipic

// MediaMethods builds the media module table over the audio clip table.
// Decoding and playback are delegated to the backend.
func MediaMethods() []Method {
	return []Method{
		{"MC_mdaClipCreate", mdaClipCreate},
		{"MC_mdaClipPutData", mdaClipPutData},
		{"MC_mdaPlay", mdaPlay},
		{"MC_mdaStop", mdaStop},
		{"MC_mdaClipClose", mdaClipClose},
	}
}

func mdaClipCreate(ctx *Context) (uint32, error) {
	clipType, err := ctx.ParamString(0)
	if err != nil {
		return 0, err
	}
	return ctx.Backend().Audio().Load(clipType, nil), nil
}

func mdaClipPutData(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	buf, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}
	size, err := ctx.Param(2)
	if err != nil {
		return 0, err
	}

	clip, err := ctx.Backend().Audio().Clip(handle)
	if err != nil {
		return 0xFFFFFFFF, nil
	}

	data, err := ctx.core.ReadBytes(buf, size)
	if err != nil {
		return 0, err
	}
	clip.Data = append(clip.Data, data...)

	return size, nil
}

func mdaPlay(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	if err := ctx.Backend().Audio().Play(handle); err != nil {
		return 0xFFFFFFFF, nil
	}
	return 0, nil
}

func mdaStop(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	if err := ctx.Backend().Audio().Stop(handle); err != nil {
		return 0xFFFFFFFF, nil
	}
	return 0, nil
}

func mdaClipClose(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	if err := ctx.Backend().Audio().Unload(handle); err != nil {
		return 0xFFFFFFFF, nil
	}
	return 0, nil
}
