package roles

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// rolesKey is the top-level YAML key holding the role list.
const rolesKey = "roles"

// Load reads a YAML role file and resolves every role in it.
func Load(path string) ([]Role, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadRoles, path, err)
	}
	var defs []Definition
	if err := k.UnmarshalWithConf(rolesKey, &defs, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadRoles, path, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: %s: no roles defined", ErrInvalidRole, path)
	}
	return ResolveAll(defs)
}

// LoadOrDefault loads path, or returns the built-in roles when path is empty.
func LoadOrDefault(path string) ([]Role, error) {
	if path == "" {
		return Defaults(), nil
	}
	return Load(path)
}
