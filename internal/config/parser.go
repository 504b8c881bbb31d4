package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"gopkg.in/guregu/null.v3"

	"github.com/ZebulonRouseFrantzich/driverman/internal/platform"
)

// Parser evaluates Lua config files into an Options layer.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (Options, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return Options{}, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return Options{}, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Options{}, ctxErr
		}
		return Options{}, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractOptions(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractOptions reads the global driverman table. A file that does not
// define it contributes nothing.
func extractOptions(L *lua.LState) (Options, error) {
	global := L.GetGlobal(luaGlobal)
	switch global.Type() {
	case lua.LTNil:
		return Options{}, nil
	case lua.LTTable:
	default:
		return Options{}, &ParseError{
			Message: fmt.Sprintf("invalid '%s' table", luaGlobal),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	table := global.(*lua.LTable)
	var opts Options
	var errs []error

	table.ForEach(func(key, value lua.LValue) {
		name, ok := key.(lua.LString)
		if !ok {
			errs = append(errs, fmt.Errorf("unexpected key %s", key.String()))
			return
		}
		if err := opts.setLuaField(string(name), value); err != nil {
			errs = append(errs, err)
		}
	})

	if err := errors.Join(errs...); err != nil {
		return Options{}, &ParseError{
			Message: fmt.Sprintf("invalid '%s' table", luaGlobal),
			Detail:  err.Error(),
		}
	}
	return opts, nil
}

func (o *Options) setLuaField(name string, value lua.LValue) error {
	var err error
	switch name {
	case luaFieldBrowserPath:
		o.BrowserPath, err = luaString(name, value)
	case luaFieldStoreDir:
		o.StoreDir, err = luaString(name, value)
	case luaFieldPinned:
		o.PinnedVersion, err = luaString(name, value)
	case luaFieldStableURL:
		o.StableURL, err = luaString(name, value)
	case luaFieldDownloadURL:
		o.DistributionURL, err = luaString(name, value)
	case luaFieldPlatform:
		o.Platform, err = luaString(name, value)
	case luaFieldTimeout:
		o.Timeout, err = luaDuration(value)
	case luaFieldProxy:
		err = o.setLuaProxy(value)
	default:
		err = fmt.Errorf("unknown field %q", name)
	}
	return err
}

func (o *Options) setLuaProxy(value lua.LValue) error {
	table, ok := value.(*lua.LTable)
	if !ok {
		return fmt.Errorf("%s: expected table, got %s", luaFieldProxy, value.Type())
	}

	var errs []error
	table.ForEach(func(key, v lua.LValue) {
		var err error
		field := luaFieldProxy + "." + key.String()
		switch key.String() {
		case luaFieldProxyHTTP:
			o.HTTPProxy, err = luaString(field, v)
		case luaFieldProxyHTTPS:
			o.HTTPSProxy, err = luaString(field, v)
		case luaFieldProxyNoProxy:
			o.NoProxy, err = luaString(field, v)
		default:
			err = fmt.Errorf("unknown field %q", field)
		}
		if err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func luaString(field string, value lua.LValue) (null.String, error) {
	s, ok := value.(lua.LString)
	if !ok {
		return null.String{}, fmt.Errorf("%s: expected string, got %s", field, value.Type())
	}
	return null.StringFrom(string(s)), nil
}

// luaDuration accepts a Go duration string or a number of seconds.
func luaDuration(value lua.LValue) (NullDuration, error) {
	switch v := value.(type) {
	case lua.LString:
		var d NullDuration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return NullDuration{}, fmt.Errorf("%s: %w", luaFieldTimeout, err)
		}
		return d, nil
	case lua.LNumber:
		if v < 0 {
			return NullDuration{}, fmt.Errorf("%s: cannot be negative", luaFieldTimeout)
		}
		return NullDurationFrom(secondsToDuration(float64(v))), nil
	default:
		return NullDuration{}, fmt.Errorf("%s: expected string or number, got %s", luaFieldTimeout, value.Type())
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
