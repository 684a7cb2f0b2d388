// Package config holds the user preferences, read from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"micmute/hotkey"
)

const FileName = "settings.yaml"

type IconVisibility string

const (
	VisibilityAlways        IconVisibility = "always"
	VisibilityNever         IconVisibility = "never"
	VisibilityWhenRecording IconVisibility = "when-recording"
)

func (v IconVisibility) Visible(active bool) bool {
	switch v {
	case VisibilityAlways:
		return true
	case VisibilityNever:
		return false
	}
	return active
}

type Settings struct {
	ShowOSD            bool           `yaml:"show-osd"`
	PlayFeedbackSounds bool           `yaml:"play-feedback-sounds"`
	ControlAllInputs   bool           `yaml:"control-all-inputs"`
	IconVisibility     IconVisibility `yaml:"icon-visibility" validate:"oneof=always never when-recording"`
	Keybinding         string         `yaml:"keybinding-toggle-mute" validate:"required,accelerator"`
	MuteDelay          time.Duration  `yaml:"mute-delay" validate:"gte=0s,lte=2s"`
	SoundOnFile        string         `yaml:"sound-on-file,omitempty" validate:"omitempty,file"`
	SoundOffFile       string         `yaml:"sound-off-file,omitempty" validate:"omitempty,file"`
	MetricsAddr        string         `yaml:"metrics-addr,omitempty" validate:"omitempty,hostname_port"`
}

func Default() Settings {
	return Settings{
		ShowOSD:        true,
		IconVisibility: VisibilityWhenRecording,
		Keybinding:     "<Super>grave",
		MuteDelay:      100 * time.Millisecond,
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report YAML keys instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("accelerator", func(fl validator.FieldLevel) bool {
		_, err := hotkey.Parse(fl.Field().String())
		return err == nil
	})
}

// FieldError is one invalid setting.
type FieldError struct {
	Key     string
	Message string
}

func (e FieldError) Error() string { return e.Key + " " + e.Message }

func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, FieldError{Key: e.Field(), Message: formatValidationMessage(e)})
	}
	return errors.Join(errs...)
}

func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "file":
		return "must name an existing file"
	case "hostname_port":
		return "must be host:port"
	case "accelerator":
		return "must be an accelerator such as <Control><Shift>m"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// DefaultPath is $XDG_CONFIG_HOME/micmute/settings.yaml or the OS equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "micmute", FileName), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write then rename so a watcher never reads a partial file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
