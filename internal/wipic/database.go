package wipic

import "github.com/jkki-i/wie/internal/backend"

// DatabaseMethods builds the database module table over the record store.
// Handles are process-local; records live under the app's data directory.
func DatabaseMethods() []Method {
	return []Method{
		{"MC_dbOpenDataBase", dbOpen},
		{"MC_dbCloseDataBase", dbClose},
		{"MC_dbInsertRecord", dbInsertRecord},
		{"MC_dbSelectRecord", dbSelectRecord},
		{"MC_dbUpdateRecord", dbUpdateRecord},
		{"MC_dbDeleteRecord", dbDeleteRecord},
		{"MC_dbGetNumberOfRecords", dbGetNumberOfRecords},
	}
}

func dbOpen(ctx *Context) (uint32, error) {
	name, err := ctx.ParamString(0)
	if err != nil {
		return 0, err
	}

	db, err := ctx.Backend().Database().Open(name)
	if err != nil {
		return 0, err
	}

	handle := ctx.nextDB
	ctx.nextDB++
	ctx.databases[handle] = db

	return handle, nil
}

func dbClose(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	delete(ctx.databases, handle)
	return 0, nil
}

func (ctx *Context) database(handle uint32) (*backend.Database, uint32) {
	d, ok := ctx.databases[handle]
	if !ok {
		return nil, 0xFFFFFFFF
	}
	return d, 0
}

func dbInsertRecord(ctx *Context) (uint32, error) {
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

	db, errCode := ctx.database(handle)
	if db == nil {
		return errCode, nil
	}

	data, err := ctx.core.ReadBytes(buf, size)
	if err != nil {
		return 0, err
	}

	return db.Add(data)
}

func dbSelectRecord(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	recordID, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}
	buf, err := ctx.Param(2)
	if err != nil {
		return 0, err
	}
	bufSize, err := ctx.Param(3)
	if err != nil {
		return 0, err
	}

	db, errCode := ctx.database(handle)
	if db == nil {
		return errCode, nil
	}

	data, err := db.Get(recordID)
	if err != nil {
		return 0xFFFFFFFF, nil
	}
	if uint32(len(data)) > bufSize {
		return 0xFFFFFFFF, nil
	}
	if err := ctx.core.WriteBytes(buf, data); err != nil {
		return 0, err
	}

	return uint32(len(data)), nil
}

func dbUpdateRecord(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	recordID, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}
	buf, err := ctx.Param(2)
	if err != nil {
		return 0, err
	}
	size, err := ctx.Param(3)
	if err != nil {
		return 0, err
	}

	db, errCode := ctx.database(handle)
	if db == nil {
		return errCode, nil
	}

	data, err := ctx.core.ReadBytes(buf, size)
	if err != nil {
		return 0, err
	}
	if err := db.Set(recordID, data); err != nil {
		return 0xFFFFFFFF, nil
	}

	return 0, nil
}

func dbDeleteRecord(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	recordID, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}

	db, errCode := ctx.database(handle)
	if db == nil {
		return errCode, nil
	}
	if err := db.Remove(recordID); err != nil {
		return 0xFFFFFFFF, nil
	}

	return 0, nil
}

func dbGetNumberOfRecords(ctx *Context) (uint32, error) {
	handle, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}

	db, errCode := ctx.database(handle)
	if db == nil {
		return errCode, nil
	}

	return db.Count()
}
