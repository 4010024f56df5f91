package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Redis struct {
			URL string `mapstructure:"url"`
		} `mapstructure:"redis"`
		Mongo struct {
			URI string `mapstructure:"uri"`
			DB  string `mapstructure:"db"`
		} `mapstructure:"mongo"`
	} `mapstructure:"repositories"`
	Planner PlannerConfig `mapstructure:"planner"`
	Gemini  struct {
		Model string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
}

// PlannerConfig tunes the itinerary construction loop.
type PlannerConfig struct {
	// OnHotelMiss decides what happens to a city with no hotel
	// candidates: "skip" drops the city's day plans, "placeholder"
	// synthesizes a budget hotel so the city survives.
	OnHotelMiss string `mapstructure:"onHotelMiss"`
	// ActivitySlots is the maximum number of activities per day.
	ActivitySlots int `mapstructure:"activitySlots"`
	// TransportLegsPerDay multiplies the cheapest local transport
	// price when estimating a city's transport spend.
	TransportLegsPerDay int `mapstructure:"transportLegsPerDay"`
}

const (
	HotelMissSkip        = "skip"
	HotelMissPlaceholder = "placeholder"
)

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetDefault("planner.onHotelMiss", HotelMissSkip)
	v.SetDefault("planner.activitySlots", 3)
	v.SetDefault("planner.transportLegsPerDay", 3)

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
