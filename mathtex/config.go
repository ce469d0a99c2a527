package mathtex

// Delimiters open and close an inline formula.
type Delimiters struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

type Config struct {
	InlineMath []Delimiters `yaml:"inlineMath"`
	// ProcessEscapes turns a backslash before an opening delimiter into a
	// literal delimiter.
	ProcessEscapes bool `yaml:"processEscapes"`
	// ContainerTag names the generated element wrapping each formula.
	ContainerTag string `yaml:"containerTag"`
	FontCache    string `yaml:"fontCache"`
}

func DefaultConfig() Config {
	return Config{
		InlineMath:     []Delimiters{{Open: "$", Close: "$"}},
		ProcessEscapes: true,
		ContainerTag:   "mjx-container",
		FontCache:      "global",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.InlineMath) == 0 {
		c.InlineMath = d.InlineMath
	}
	if c.ContainerTag == "" {
		c.ContainerTag = d.ContainerTag
	}
	if c.FontCache == "" {
		c.FontCache = d.FontCache
	}
	return c
}
