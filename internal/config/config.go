package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen   string    `koanf:"listen"`
	Frontend Frontend  `koanf:"frontend"`
	Database Database  `koanf:"db"`
	People   []string  `koanf:"people"`
	Projects []Project `koanf:"projects"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

// Project is a named workspace that tasks, budget items, and notes belong to.
// The project list is operator configuration, not user-managed data.
type Project struct {
	Id   string `koanf:"id"`
	Name string `koanf:"name"`
}

type Database struct {
	// Driver is either "sqlite" or "postgres".
	Driver string `koanf:"driver"`
	// Path is the database file location when the driver is sqlite.
	Path   string `koanf:"path"`
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen: ":8181",
		Frontend: Frontend{
			Enabled: true,
		},
		Database: Database{
			Driver: "sqlite",
			Path:   "./data/crewdeck.db",
			Host:   "localhost",
			Port:   5432,
			User:   "crewdeck",
			Pass:   "",
			Name:   "crewdeck",
			Schema: "crewdeck",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "CREWDECK_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CREWDECK_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
