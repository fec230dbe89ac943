package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/df07/go-wavefront-tracer/pkg/film"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"sky scene", "sky", false},
		{"sun scene", "sun", false},
		{"studio scene", "studio", false},
		{"binary-sun scene", "binary-sun", false},

		// World files by name and path
		{"sunset world", "pbrt:sunset", false},
		{"direct world path", "scenes/turntable.pbrt", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"missing world", "pbrt:nonexistent", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createScene(tt.sceneType, 32)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if s != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s.CameraConfig.Width != 32 {
				t.Errorf("Width override not applied, got %d", s.CameraConfig.Width)
			}
			if s.SamplesPerPixel <= 0 {
				t.Errorf("Samples per pixel should be positive, got %d", s.SamplesPerPixel)
			}
		})
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		config config
	}{
		{"combined png", config{Scene: "sun", Format: film.FormatPNG, Pass: film.PassCombined}},
		{"background tiff", config{Scene: "studio", Format: film.FormatTIFF, Pass: film.PassBackground}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			cfg.Samples = 1
			cfg.Width = 16
			cfg.OutputDir = t.TempDir()

			filename, err := run(context.Background(), cfg)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !strings.HasPrefix(filename, filepath.Join(cfg.OutputDir, cfg.Scene)) {
				t.Errorf("output %s not under the scene directory", filename)
			}
			if filepath.Ext(filename) != cfg.Format.Extension() {
				t.Errorf("extension = %s, want %s", filepath.Ext(filename), cfg.Format.Extension())
			}

			file, err := os.Open(filename)
			if err != nil {
				t.Fatal(err)
			}
			defer file.Close()

			decode := png.Decode
			if cfg.Format == film.FormatTIFF {
				decode = tiff.Decode
			}
			img, err := decode(file)
			if err != nil {
				t.Fatalf("decoding output: %v", err)
			}
			if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 9 {
				t.Errorf("image is %v, want 16x9", img.Bounds())
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config config
		want   string
	}{
		{"unknown scene", config{Scene: "nonexistent"}, "unknown scene"},
		{"pass not rendered", config{Scene: "sky", Pass: film.PassEmission}, "does not render the emission pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			cfg.OutputDir = t.TempDir()
			_, err := run(context.Background(), cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run(ctx, config{Scene: "sky", Samples: 1, Width: 8, OutputDir: t.TempDir()})
	if err == nil {
		t.Error("canceled render should fail")
	}
}

// closeRecorder is a WriteCloser whose Close fails with err
type closeRecorder struct {
	bytes.Buffer
	err    error
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.err
}

func TestEncodeAndClose(t *testing.T) {
	errFlush := errors.New("flush failed")
	errEncode := errors.New("encode failed")
	write := func(w io.Writer) error {
		_, err := w.Write([]byte("image"))
		return err
	}
	fail := func(w io.Writer) error { return errEncode }

	tests := []struct {
		name     string
		closeErr error
		encode   func(io.Writer) error
		want     error
	}{
		{"ok", nil, write, nil},
		{"close fails", errFlush, write, errFlush},
		{"encode fails", errFlush, fail, errEncode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &closeRecorder{err: tt.closeErr}
			err := encodeAndClose(w, tt.encode)
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !w.closed {
				t.Error("writer was not closed")
			}
		})
	}
}
