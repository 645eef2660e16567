// Package store persists rollouts on disk.
//
// Every rollout is stored in its own directory named by the run ID:
//
//	<dir>/<id>/metadata.json
//	<dir>/<id>/states.csv
//
// states.csv holds one row per trajectory step with columns traj,step,x0..xN,u0..uM.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/traj"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("store: run not found")

// Metadata describes a stored rollout.
type Metadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Linear     bool               `json:"linear"`
	Controller string             `json:"controller"`
	Noise      string             `json:"noise"`
	Seed       uint64             `json:"seed"`
	Dt         float64            `json:"dt"`
	Batch      int                `json:"batch"`
	Steps      int                `json:"steps"`
	StateDim   int                `json:"state_dim"`
	InDim      int                `json:"in_dim"`
	Params     map[string]float64 `json:"params,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Store stores rollouts in a directory.
type Store struct {
	baseDir string
}

// New creates new Store rooted in baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// Init creates the store directory.
func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Save stores the rollout logs xLog and uLog with metadata meta and returns the run ID.
// A new ID is generated if meta.ID is empty. Log dimensions and timestamp are filled in by Save.
func (s *Store) Save(meta Metadata, xLog, uLog *traj.Tensor) (string, error) {
	if xLog == nil || uLog == nil {
		return "", fmt.Errorf("%w: nil rollout log", sysid.ErrDimensionMismatch)
	}

	batch, steps, nx := xLog.Dims()
	ub, us, nu := uLog.Dims()
	if batch != ub || steps != us {
		return "", fmt.Errorf("%w: state log [%d x %d], input log [%d x %d]", sysid.ErrDimensionMismatch, batch, steps, ub, us)
	}

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}

	dir, err := s.runDir(meta.ID)
	if err != nil {
		return "", err
	}

	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Batch, meta.Steps, meta.StateDim, meta.InDim = batch, steps, nx, nu

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(dir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(dir, statesFile), xLog, uLog); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns metadata of all stored runs ordered by timestamp.
// Directories which do not contain valid metadata are skipped.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	runs := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := readMetadata(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

// Load returns metadata of run id.
func (s *Store) Load(id string) (*Metadata, error) {
	dir, err := s.runDir(id)
	if err != nil {
		return nil, err
	}

	meta, err := readMetadata(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	return meta, nil
}

// LoadRollout returns the state and input logs of run id.
func (s *Store) LoadRollout(id string) (*traj.Tensor, *traj.Tensor, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, nil, err
	}

	dir, err := s.runDir(id)
	if err != nil {
		return nil, nil, err
	}

	return readStates(filepath.Join(dir, statesFile), meta)
}

// Delete removes run id from the store.
func (s *Store) Delete(id string) error {
	dir, err := s.runDir(id)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}

	return os.RemoveAll(dir)
}

func (s *Store) runDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("invalid run id: %q", id)
	}

	return filepath.Join(s.baseDir, id), nil
}

func writeMetadata(path string, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return enc.Encode(meta)
}

func readMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func writeStates(path string, xLog, uLog *traj.Tensor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	batch, steps, nx := xLog.Dims()
	_, _, nu := uLog.Dims()

	w := csv.NewWriter(f)

	header := []string{"traj", "step"}
	for i := 0; i < nx; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < nu; i++ {
		header = append(header, fmt.Sprintf("u%d", i))
	}

	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for b := 0; b < batch; b++ {
		for s := 0; s < steps; s++ {
			row[0] = strconv.Itoa(b)
			row[1] = strconv.Itoa(s)
			for i := 0; i < nx; i++ {
				row[2+i] = strconv.FormatFloat(xLog.At(b, s, i), 'g', -1, 64)
			}
			for i := 0; i < nu; i++ {
				row[2+nx+i] = strconv.FormatFloat(uLog.At(b, s, i), 'g', -1, 64)
			}

			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()

	return w.Error()
}

func readStates(path string, meta *Metadata) (*traj.Tensor, *traj.Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	xLog, err := traj.New(meta.Batch, meta.Steps, meta.StateDim, nil)
	if err != nil {
		return nil, nil, err
	}

	uLog, err := traj.New(meta.Batch, meta.Steps, meta.InDim, nil)
	if err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2 + meta.StateDim + meta.InDim

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records)-1 != meta.Batch*meta.Steps {
		return nil, nil, fmt.Errorf("%w: %d rows, expected %d", sysid.ErrDimensionMismatch, len(records)-1, meta.Batch*meta.Steps)
	}

	for _, record := range records[1:] {
		b, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, nil, err
		}

		s, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, nil, err
		}

		if b < 0 || b >= meta.Batch || s < 0 || s >= meta.Steps {
			return nil, nil, fmt.Errorf("%w: row traj=%d step=%d out of range", sysid.ErrDimensionMismatch, b, s)
		}

		for i, field := range record[2:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, err
			}

			if i < meta.StateDim {
				xLog.Set(b, s, i, val)
				continue
			}
			uLog.Set(b, s, i-meta.StateDim, val)
		}
	}

	return xLog, uLog, nil
}
