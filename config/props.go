package config

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Props reads scalar properties from environment variables named
// SECTION__PROPERTY. A value that does not parse as the requested type is
// reported as absent.
type Props struct {
	v *viper.Viper
}

// NewProps returns Props backed by the process environment.
func NewProps() *Props {
	v := viper.New()
	v.AutomaticEnv()
	return &Props{v: v}
}

// LoadProps loads the service .env file into the environment, then returns
// NewProps.
func LoadProps(serviceName string, opts ...LoaderOption) *Props {
	lc := newLoaderConfig(opts)
	resolver := &FileResolver{FileSystem: lc.FileSystem}
	loadEnvFile(lc.FileSystem, resolver.ResolveFiles(serviceName, lc).EnvFile)
	return NewProps()
}

// PropsFrom returns Props over fixed values keyed by SECTION__PROPERTY.
func PropsFrom(values map[string]string) *Props {
	v := viper.New()
	for k, val := range values {
		v.Set(strings.ToUpper(k), val)
	}
	return &Props{v: v}
}

// PropKey returns the variable name for section and property.
func PropKey(section, property string) string {
	return strings.ToUpper(section) + "__" + strings.ToUpper(property)
}

func (p *Props) lookup(section, property string) (interface{}, bool) {
	key := PropKey(section, property)
	if !p.v.IsSet(key) {
		return nil, false
	}
	return p.v.Get(key), true
}

// String returns the property as a string.
func (p *Props) String(section, property string) (string, bool) {
	raw, ok := p.lookup(section, property)
	if !ok {
		return "", false
	}
	s, err := cast.ToStringE(raw)
	return s, err == nil
}

// Int returns the property as an int.
func (p *Props) Int(section, property string) (int, bool) {
	raw, ok := p.lookup(section, property)
	if !ok {
		return 0, false
	}
	n, err := cast.ToIntE(raw)
	return n, err == nil
}

// Bool returns the property as a bool.
func (p *Props) Bool(section, property string) (bool, bool) {
	raw, ok := p.lookup(section, property)
	if !ok {
		return false, false
	}
	b, err := cast.ToBoolE(raw)
	return b, err == nil
}

// IntOr returns the int property or def when it is absent or malformed.
func (p *Props) IntOr(section, property string, def int) int {
	if n, ok := p.Int(section, property); ok {
		return n
	}
	return def
}
