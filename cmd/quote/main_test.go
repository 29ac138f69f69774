package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"alquipc/internal/modules/pricing"
)

func runQuote(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	svc := pricing.NewService(nil, nil, pricing.Catalog{}, nil)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), svc, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Summary(t *testing.T) {
	code, out, _ := runQuote(t, "-equipos", "3", "-dias", "4", "-modo", "Fuera Ciudad")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "VALOR TOTAL A CANCELAR: $441,000.00") {
		t.Errorf("summary = %q", out)
	}
}

func TestRun_JSON(t *testing.T) {
	code, out, _ := runQuote(t, "-equipos", "2", "-dias", "3", "-adicionales", "2", "-json")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	var got quoteOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 336000 || got.Tariff != pricing.DefaultTariffCode || got.Breakdown.Adjustment != "Descuento Días Adicionales" {
		t.Errorf("quote = %+v", got)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"below minimum", []string{"-equipos", "1", "-dias", "5"}, exitValidation},
		{"fractional days", []string{"-equipos", "2", "-dias", "5.5"}, exitValidation},
		{"missing days", []string{"-equipos", "2"}, exitValidation},
		{"unknown mode", []string{"-equipos", "2", "-dias", "1", "-modo", "Moon"}, exitValidation},
		{"unknown flag", []string{"-foo"}, exitValidation},
		{"word extra days", []string{"-equipos", "2", "-dias", "1", "-adicionales", "dos"}, exitValidation},
		{"unknown tariff", []string{"-equipos", "2", "-dias", "1", "-tariff", "gold"}, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runQuote(t, tt.args...)
			if code != tt.want {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.want, stderr)
			}
		})
	}
}

func TestFlagNumber(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{" 3 ", int64(3)},
		{"-1", int64(-1)},
		{"5.5", "5.5"},
		{"dos", "dos"},
	}
	for _, tt := range tests {
		if got := flagNumber(tt.in); got != tt.want {
			t.Errorf("flagNumber(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestRun_EmptyExtraDaysMeansZero(t *testing.T) {
	code, out, _ := runQuote(t, "-equipos", "2", "-dias", "3", "-adicionales", "")
	if code != exitOK || !strings.Contains(out, "$210,000.00") {
		t.Errorf("exit code = %d, out = %q", code, out)
	}
}
