// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
	Capture CaptureConfig `yaml:"capture"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	HighDPI    bool   `yaml:"high_dpi"` // selects the drawable-size resize source
}

// RenderConfig holds renderer output settings.
type RenderConfig struct {
	Antialias     bool    `yaml:"antialias"`
	MSAASamples   int     `yaml:"msaa_samples"`
	ToneMapping   string  `yaml:"tone_mapping"` // "none", "linear", "cineon", "aces"
	Exposure      float32 `yaml:"exposure"`
	Shadows       bool    `yaml:"shadows"`
	ShadowType    string  `yaml:"shadow_type"` // "basic", "pcf", "pcfsoft"
	ClearColor    Color   `yaml:"clear_color"`
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"`
}

// SceneConfig holds the initial scene parameters.
type SceneConfig struct {
	EnvMapIntensity float32      `yaml:"env_map_intensity"`
	PanelOpen       bool         `yaml:"panel_open"`
	Light           LightConfig  `yaml:"light"`
	Camera          CameraConfig `yaml:"camera"`
	Floor           FloorConfig  `yaml:"floor"`
	Model           ModelConfig  `yaml:"model"`
}

// LightConfig holds directional light and shadow settings.
type LightConfig struct {
	Color         Color      `yaml:"color"`
	Intensity     float32    `yaml:"intensity"`
	Position      [3]float32 `yaml:"position,flow"`
	ShadowFar     float32    `yaml:"shadow_far"`
	ShadowMapSize int        `yaml:"shadow_map_size"`
	NormalBias    float32    `yaml:"normal_bias"`
}

// CameraConfig holds perspective camera and orbit control settings.
type CameraConfig struct {
	FOV           float32    `yaml:"fov"`
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	Position      [3]float32 `yaml:"position,flow"`
	DampingFactor float32    `yaml:"damping_factor"`
}

// FloorConfig holds floor disc settings.
type FloorConfig struct {
	Radius   float32 `yaml:"radius"`
	Segments int     `yaml:"segments"`
	Repeat   float32 `yaml:"repeat"`
}

// ModelConfig holds animated model settings.
type ModelConfig struct {
	Scale float32 `yaml:"scale"`
	Clip  int     `yaml:"clip"`
}

// AssetsConfig holds asset paths, relative to Root.
type AssetsConfig struct {
	Root        string   `yaml:"root"`
	EnvMapFaces []string `yaml:"env_map_faces"` // px, nx, py, ny, pz, nz
	Model       string   `yaml:"model"`
	FloorColor  string   `yaml:"floor_color"`
	FloorNormal string   `yaml:"floor_normal"`
	Workers     int      `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`

	// Rotation of LogFile.
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// CaptureConfig holds screenshot settings.
type CaptureConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "envscene",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			HighDPI:    true,
		},
		Render: RenderConfig{
			Antialias:     true,
			MSAASamples:   4,
			ToneMapping:   "cineon",
			Exposure:      1.75,
			Shadows:       true,
			ShadowType:    "pcfsoft",
			ClearColor:    MustParseColor("#211d20"),
			MaxPixelRatio: 2,
		},
		Scene: SceneConfig{
			EnvMapIntensity: 0.4,
			PanelOpen:       false,
			Light: LightConfig{
				Color:         MustParseColor("#313fa2"),
				Intensity:     2,
				Position:      [3]float32{3.5, 2, -1.25},
				ShadowFar:     15,
				ShadowMapSize: 1024,
				NormalBias:    0.05,
			},
			Camera: CameraConfig{
				FOV:           35,
				Near:          0.1,
				Far:           100,
				Position:      [3]float32{8, 6, 10},
				DampingFactor: 0.05,
			},
			Floor: FloorConfig{
				Radius:   5,
				Segments: 64,
				Repeat:   1.5,
			},
			Model: ModelConfig{
				Scale: 0.02,
				Clip:  0,
			},
		},
		Assets: AssetsConfig{
			Root: "static",
			EnvMapFaces: []string{
				"textures/environmentMap/px.jpg",
				"textures/environmentMap/nx.jpg",
				"textures/environmentMap/py.jpg",
				"textures/environmentMap/ny.jpg",
				"textures/environmentMap/pz.jpg",
				"textures/environmentMap/nz.jpg",
			},
			Model:       "models/Fox/glTF/Fox.gltf",
			FloorColor:  "textures/dirt/color.jpg",
			FloorNormal: "textures/dirt/normal.jpg",
			Workers:     4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Capture: CaptureConfig{
			Dir:    "screenshots",
			Prefix: "envscene",
		},
	}
}
