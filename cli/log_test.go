package cli

import (
	"testing"

	"github.com/ardnew/tagfn/log"
)

func TestLogConfig_Scan(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			"separate values",
			[]string{"eval", "--log-level", "debug", "--log-format", "json", "x.tfn"},
			logConfig{Level: "debug", Format: "json", Pretty: true},
		},
		{
			"assigned values",
			[]string{"--log-level=trace", "--log-caller", "--no-log-pretty"},
			logConfig{Level: "trace", Caller: true},
		},
		{
			"explicit booleans",
			[]string{"--log-pretty=false", "--no-log-caller=false"},
			logConfig{Caller: true},
		},
		{
			"invalid level ignored",
			[]string{"--log-level", "loud"},
			logConfig{Pretty: true},
		},
		{
			"stops at terminator",
			[]string{"--", "--log-level=debug"},
			logConfig{Pretty: true},
		},
		{
			"flag value not consumed",
			[]string{"--log-level", "--log-caller"},
			logConfig{Caller: true, Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logConfig{Pretty: true}
			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLogConfig_Vars(t *testing.T) {
	var f logConfig

	vars := f.vars()

	if got := vars["logLevelEnum"]; got != "trace,debug,info,warn,error" {
		t.Errorf("level enum = %q", got)
	}

	if got := vars["logFormat"]; got != "text" {
		t.Errorf("default format = %q", got)
	}
}
