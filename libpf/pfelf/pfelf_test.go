// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pfelf_test

import (
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/ebpf-profiler/libpf/pfelf"
)

// buildNote constructs a single ELF notes-section entry (namesz, descsz,
// type, name, desc), padding name and desc to 32-bit boundaries the way the
// real ELF note format requires.
func buildNote(name string, noteType uint32, desc []byte) []byte {
	nameBytes := append([]byte(name), 0)
	pad := func(b []byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, 0)
		}
		return b
	}

	var out []byte
	u32 := make([]byte, 4)

	binary.LittleEndian.PutUint32(u32, uint32(len(nameBytes)))
	out = append(out, u32...)
	binary.LittleEndian.PutUint32(u32, uint32(len(desc)))
	out = append(out, u32...)
	binary.LittleEndian.PutUint32(u32, noteType)
	out = append(out, u32...)
	out = append(out, pad(nameBytes)...)
	out = append(out, pad(desc)...)
	return out
}

func TestGetBuildIDFromNotesFile(t *testing.T) {
	buildID := []byte("_notorious_build_id_")
	notes := buildNote("GNU", 0x3, buildID)

	path := filepath.Join(t.TempDir(), "notes")
	require.NoError(t, os.WriteFile(path, notes, 0o600))

	got, err := pfelf.GetBuildIDFromNotesFile(path)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(buildID), got)
}

func TestGetBuildIDFromNotesFileNoBuildID(t *testing.T) {
	notes := buildNote("GNU", 0x100, []byte("unrelated"))

	path := filepath.Join(t.TempDir(), "notes")
	require.NoError(t, os.WriteFile(path, notes, 0o600))

	_, err := pfelf.GetBuildIDFromNotesFile(path)
	require.ErrorIs(t, err, pfelf.ErrNoBuildID)
}

func TestGetBuildIDFromNotesFileMissingFile(t *testing.T) {
	_, err := pfelf.GetBuildIDFromNotesFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
