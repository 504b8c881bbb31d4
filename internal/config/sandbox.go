package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLibs are the only standard libraries opened for config code.
var sandboxLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// blockedGlobals are base functions that load code or write output.
var blockedGlobals = []string{
	"require",
	"module",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"print",
	"collectgarbage",
	"getfenv",
	"setfenv",
}

// newSandboxedVM creates a Lua VM for config parsing. The os, io, package
// and debug libraries are never opened; config files stay declarative.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       120,
		RegistrySize:        1024 * 20,
		IncludeGoStackTrace: false,
	})

	for _, lib := range sandboxLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
