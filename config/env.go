package config

import (
	"os"
	"regexp"
)

// envVar matches a ${NAME} reference. A bare $ is left as written.
var envVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} references in s with the value of the environment
// variable, or "" when it is unset.
func expandEnv(s string) string {
	return envVar.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envVar.FindStringSubmatch(ref)[1])
	})
}

// expandEnv expands the string values of the config in place.
func (c *Config) expandEnv() {
	for _, s := range []*string{&c.Webserver.HostName, &c.Webserver.Port, &c.Client.UserAgent} {
		*s = expandEnv(*s)
	}
	for i := range c.Layers {
		l := &c.Layers[i]
		for _, s := range []*string{&l.ID, &l.Kind, &l.URL, &l.Name, &l.NameField, &l.TooltipField, &l.OutFields, &l.SourceLayer} {
			*s = expandEnv(*s)
		}
		for k, v := range l.Source {
			if s, ok := v.(string); ok {
				l.Source[k] = expandEnv(s)
			}
		}
	}
}
