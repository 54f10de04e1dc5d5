package config

// Config holds bindery configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Input             InputCfg    `mapstructure:"input" yaml:"input"`
	Output            OutputCfg   `mapstructure:"output" yaml:"output"`
	Sections          SectionsCfg `mapstructure:"sections" yaml:"sections"`
	TOC               TOCCfg      `mapstructure:"toc" yaml:"toc"`
	Render            RenderCfg   `mapstructure:"render" yaml:"render"`
	KeepIntermediates bool        `mapstructure:"keep_intermediates" yaml:"keep_intermediates"`
	LogLevel          string      `mapstructure:"log_level" yaml:"log_level"` // "debug", "info", "warn", "error"
}

// InputCfg locates the source documents.
type InputCfg struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // Directory scanned for source documents
}

// OutputCfg locates the deliverables.
type OutputCfg struct {
	File       string `mapstructure:"file" yaml:"file"`               // Composite PDF path
	ReportFile string `mapstructure:"report_file" yaml:"report_file"` // Mismatch report path, empty disables
}

// SectionsCfg configures the section join sources.
type SectionsCfg struct {
	MappingFile    string `mapstructure:"mapping_file" yaml:"mapping_file"`       // id -> section number rows
	CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"` // section number -> name rows
	AutoAssign     bool   `mapstructure:"auto_assign" yaml:"auto_assign"`         // Derive sections from id prefixes instead
}

// TOCCfg configures TOC layout.
type TOCCfg struct {
	Title             string  `mapstructure:"title" yaml:"title"`
	FontFamily        string  `mapstructure:"font_family" yaml:"font_family"`
	FontSize          float64 `mapstructure:"font_size" yaml:"font_size"`
	HeaderFontSize    float64 `mapstructure:"header_font_size" yaml:"header_font_size"`
	TitleFontSize     float64 `mapstructure:"title_font_size" yaml:"title_font_size"`
	Margin            float64 `mapstructure:"margin" yaml:"margin"`           // mm
	LineHeight        float64 `mapstructure:"line_height" yaml:"line_height"` // mm
	PlaceholderDigits int     `mapstructure:"placeholder_digits" yaml:"placeholder_digits"`
}

// RenderCfg configures the external document converter.
type RenderCfg struct {
	Binary         string `mapstructure:"binary" yaml:"binary"`                   // Converter executable
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-document timeout
	MaxRetries     uint   `mapstructure:"max_retries" yaml:"max_retries"`         // Attempts per document
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputCfg{
			Dir: "input",
		},
		Output: OutputCfg{
			File:       "composite.pdf",
			ReportFile: "mismatches.txt",
		},
		Sections: SectionsCfg{
			AutoAssign: true,
		},
		TOC: TOCCfg{
			Title:             "Table of Contents",
			FontFamily:        "Arial",
			FontSize:          8,
			HeaderFontSize:    10,
			TitleFontSize:     12,
			Margin:            15,
			LineHeight:        6,
			PlaceholderDigits: 4,
		},
		Render: RenderCfg{
			Binary:         "soffice",
			TimeoutSeconds: 120,
			MaxRetries:     3,
		},
		LogLevel: "info",
	}
}
