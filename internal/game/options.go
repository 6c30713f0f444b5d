package game

// Options carries game-specific start parameters. Games validate them in
// Init and wrap ErrBadOption for anything malformed.
type Options map[string]any

// Int extracts an integer option, tolerating the numeric types produced by
// config and JSON decoding.
func (o Options) Int(key string) (int, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}

// IntOr extracts an integer option or returns def when absent or mistyped.
func (o Options) IntOr(key string, def int) int {
	if v, ok := o.Int(key); ok {
		return v
	}
	return def
}

// Float extracts a float option.
func (o Options) Float(key string) (float64, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

// FloatOr extracts a float option or returns def.
func (o Options) FloatOr(key string, def float64) float64 {
	if v, ok := o.Float(key); ok {
		return v
	}
	return def
}

// String extracts a string option.
func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr extracts a string option or returns def.
func (o Options) StringOr(key string, def string) string {
	if s, ok := o.String(key); ok {
		return s
	}
	return def
}

// Bool extracts a boolean option.
func (o Options) Bool(key string) bool {
	v, ok := o[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
