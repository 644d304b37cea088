// Package config loads the TOML configuration file.
package config

import (
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/layer"
)

const DefaultPort = ":8080"

// SourceKeyType is the key of a layer's source table naming the provider driver.
const SourceKeyType = "type"

// Config represents a geolayer config file.
type Config struct {
	// LocationName is the file name or http server that the config was read from.
	// If this is "", it means that the location was unknown. This is the case if
	// the Parse() function is used directly.
	LocationName string    `toml:"-"`
	Webserver    Webserver `toml:"webserver"`
	Client       Client    `toml:"client"`
	Layers       []Layer   `toml:"layers"`
}

type Webserver struct {
	HostName string `toml:"hostname"`
	Port     string `toml:"port"`
}

// Client configures the service client.
type Client struct {
	RetryMax     int      `toml:"retry_max"`
	RetryWaitMin Duration `toml:"retry_wait_min"`
	RetryWaitMax Duration `toml:"retry_wait_max"`
	Timeout      Duration `toml:"timeout"`
	UserAgent    string   `toml:"user_agent"`
}

// Layer is a [[layers]] entry.
type Layer struct {
	ID           string `toml:"id"`
	Kind         string `toml:"kind"`
	URL          string `toml:"url"`
	Name         string `toml:"name"`
	NameField    string `toml:"name_field"`
	TooltipField string `toml:"tooltip_field"`
	OutFields    string `toml:"out_fields"`
	Sublayers    []int  `toml:"sublayers"`
	Hidden       bool   `toml:"hidden"`
	// Source is the provider config of a file layer. Its "type" key names the driver.
	Source      map[string]interface{} `toml:"source"`
	SourceLayer string                 `toml:"source_layer"`
}

// Driver returns the source's provider driver name.
func (l Layer) Driver() string {
	s, _ := l.Source[SourceKeyType].(string)
	return s
}

// Duration is a time.Duration read from a string like "1.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	ids := map[string]bool{}
	for _, l := range c.Layers {
		if l.ID == "" {
			return ErrLayerMissingID{Name: l.Name}
		}
		if ids[l.ID] {
			return ErrDuplicateLayerID{ID: l.ID}
		}
		ids[l.ID] = true

		kind, err := layer.ParseKind(l.Kind)
		if err != nil {
			return ErrUnknownKind{LayerID: l.ID, Kind: l.Kind}
		}
		switch kind {
		case layer.FeatureService, layer.ImageService:
			if l.URL == "" {
				return ErrMissingURL{LayerID: l.ID}
			}
		case layer.FileSource:
			if l.Driver() == "" {
				return ErrMissingSource{LayerID: l.ID}
			}
		}
	}
	return nil
}

// Parse will parse the geolayer config file provided by the io.Reader.
// ${NAME} references in string values are replaced with the environment
// variable after decoding.
func Parse(reader io.Reader, location string) (conf Config, err error) {
	raw, err := ioutil.ReadAll(reader)
	if err != nil {
		return conf, errors.Wrapf(err, "reading config %v", location)
	}

	md, err := toml.Decode(string(raw), &conf)
	if err != nil {
		return conf, errors.Wrapf(err, "decoding config %v", location)
	}
	for _, k := range md.Undecoded() {
		log.Warnf("config: unknown key %v in %v", k, location)
	}

	conf.LocationName = location
	conf.expandEnv()
	conf.applyDefaults()
	return conf, nil
}

func (c *Config) applyDefaults() {
	if c.Webserver.Port == "" {
		c.Webserver.Port = DefaultPort
	}
	if !strings.Contains(c.Webserver.Port, ":") {
		c.Webserver.Port = ":" + c.Webserver.Port
	}
	for i := range c.Layers {
		if c.Layers[i].ID == "" {
			c.Layers[i].ID = uuid.New()
			log.Infof("config: layer %q has no id, using %v", c.Layers[i].Name, c.Layers[i].ID)
		}
		if c.Layers[i].Kind == "" {
			c.Layers[i].Kind = layer.FeatureService.String()
		}
		if c.Layers[i].OutFields == "" {
			c.Layers[i].OutFields = "*"
		}
	}
}

// Load will load and parse the config file from the given location.
func Load(location string) (conf Config, err error) {
	f, err := os.Open(location)
	if err != nil {
		return conf, errors.Wrapf(err, "opening config %v", location)
	}
	defer f.Close()

	return Parse(f, location)
}
