package opentui

import (
	"errors"
	"math"
	"testing"

	"github.com/zephraph/opentui/layout"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	if c.R < 0.99 || c.G > 0.01 || c.B > 0.01 || c.A != 1 {
		t.Errorf("parsed = %+v", c)
	}

	if _, err := ParseColor("not-a-color"); err == nil {
		t.Error("expected error for malformed color")
	}
	var argErr *InvalidArgumentError
	_, err = ParseColor("#zzz")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.As(err, &argErr) {
		t.Errorf("error type = %T", err)
	}
}

func TestBlendOver(t *testing.T) {
	red := RGB(1, 0, 0)
	blue := RGB(0, 0, 1)

	if got := red.BlendOver(blue); got != red {
		t.Errorf("opaque blend = %+v, want source", got)
	}
	if got := Transparent.BlendOver(blue); got != blue {
		t.Errorf("transparent blend = %+v, want destination", got)
	}

	half := NewRGBA(1, 0, 0, 0.5)
	got := half.BlendOver(blue)
	if math.Abs(got.R-0.5) > 0.01 || math.Abs(got.B-0.5) > 0.01 || got.A != 1 {
		t.Errorf("half blend = %+v", got)
	}
}

func TestChannels8(t *testing.T) {
	r, g, b := RGB(1, 0.5, 0).channels8()
	if r != 255 || g != 128 || b != 0 {
		t.Errorf("channels = %d,%d,%d", r, g, b)
	}
}

func TestParseSizeValues(t *testing.T) {
	if v, err := ParseSize("auto"); err != nil || v.Unit != layout.UnitAuto {
		t.Errorf("auto = %+v, %v", v, err)
	}
	v, err := ParseSize("50%")
	if err != nil {
		t.Fatal(err)
	}
	if v.Amount != 50 {
		t.Errorf("percent amount = %v", v.Amount)
	}
	if _, err := ParseSize("12p%x"); err == nil {
		t.Error("expected error for malformed percentage")
	}
	if _, err := ParseSize("-3"); err == nil {
		t.Error("expected error for negative size")
	}
}
