package util_test

import (
	"bytes"
	"testing"

	"github.com/downfa11-org/snapstore/util"
)

func TestGeneratePageDeterministic(t *testing.T) {
	a := make([]byte, 8192)
	b := make([]byte, 8192)
	util.GeneratePage(a, 7, 42)
	util.GeneratePage(b, 7, 42)
	if !bytes.Equal(a, b) {
		t.Error("same seed and page produced different payloads")
	}

	util.GeneratePage(b, 7, 43)
	if bytes.Equal(a, b) {
		t.Error("different pages produced identical payloads")
	}

	util.GeneratePage(b, 8, 42)
	if bytes.Equal(a, b) {
		t.Error("different seeds produced identical payloads")
	}
}

func TestGenerateID(t *testing.T) {
	if util.GenerateID("a") == util.GenerateID("b") {
		t.Error("distinct payloads hashed to the same id")
	}
	if util.GenerateID("a") != util.GenerateID("a") {
		t.Error("GenerateID is not stable")
	}
}
