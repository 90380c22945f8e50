package setup

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	solvency "github.com/consensys/gnark-solvency"
	"github.com/consensys/gnark-solvency/logger"
)

const (
	ccsExt = ".ccs"
	pkExt  = ".pk"
	vkExt  = ".vk"

	artifactMagic = "gnark-solvency"
	maxHeaderLen  = 1 << 10
)

var (
	// ErrNotAnArtifact rejects files without a valid artifact header
	ErrNotAnArtifact = errors.New("file is not a solvency artifact")

	// ErrCurveMismatch rejects artifacts generated for another curve
	ErrCurveMismatch = errors.New("artifact curve mismatch")
)

// header prefixes every artifact file so a loader can refuse foreign or
// incompatible files before deserializing the payload.
type header struct {
	Magic   string `cbor:"magic"`
	Version string `cbor:"version"`
	Curve   string `cbor:"curve"`
}

func currentHeader() header {
	return header{
		Magic:   artifactMagic,
		Version: solvency.Version.String(),
		Curve:   solvency.Curve().String(),
	}
}

func artifactPath(dir, ext string) string {
	return filepath.Join(dir, "solvency"+ext)
}

func writeArtifact(path string, payload io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := writeHeader(w, currentHeader()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := payload.WriteTo(w); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readArtifact(path string, payload io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if err := readHeader(r); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if _, err := payload.ReadFrom(r); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeHeader(w io.Writer, h header) error {
	raw, err := cbor.Marshal(h)
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(raw)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// readHeader validates magic and curve and warns on version skew, the same
// policy the constraint-system serialization applies.
func readHeader(r io.Reader) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnArtifact, err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 || n > maxHeaderLen {
		return fmt.Errorf("%w: implausible header length %d", ErrNotAnArtifact, n)
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnArtifact, err)
	}
	var h header
	if err := cbor.Unmarshal(raw, &h); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnArtifact, err)
	}
	if h.Magic != artifactMagic {
		return fmt.Errorf("%w: bad magic %q", ErrNotAnArtifact, h.Magic)
	}
	if h.Curve != solvency.Curve().String() {
		return fmt.Errorf("%w: got %s, want %s", ErrCurveMismatch, h.Curve, solvency.Curve())
	}
	objectVersion, err := semver.Parse(h.Version)
	if err != nil {
		return fmt.Errorf("%w: bad version %q", ErrNotAnArtifact, h.Version)
	}
	if solvency.Version.Compare(objectVersion) != 0 {
		log := logger.With("setup")
		log.Warn().Str("binary", solvency.Version.String()).Str("artifact", objectVersion.String()).Msg("version mismatch with artifact, no compatibility guarantees")
	}
	return nil
}
