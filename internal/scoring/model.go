// internal/scoring/model.go
package scoring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	appErrors "github.com/churnsight/churnsight-backend/internal/errors"
	"github.com/churnsight/churnsight-backend/internal/model"
)

// Model scores churn probability for a single customer and explains
// which features drive its predictions.
type Model interface {
	Name() string
	PredictProba(c model.Customer) float64
	Drivers(topN int) []Driver
}

// Driver is one entry of a model's explainability report.
type Driver struct {
	Feature   string  `json:"feature"`
	Weight    float64 `json:"weight"`
	Direction string  `json:"direction,omitempty"`
}

// ScoreAll scores a batch of customers in order.
func ScoreAll(m Model, customers []model.Customer) []float64 {
	probs := make([]float64, len(customers))
	for i, c := range customers {
		probs[i] = m.PredictProba(c)
	}
	return probs
}

// Registry holds the pre-fitted model artifacts loaded at startup.
type Registry struct {
	models map[string]Model
	names  []string
}

// LoadDir reads every *.json artifact in dir. Each file declares its
// kind ("logistic" or "forest") in a type field.
func LoadDir(dir string) (*Registry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "fail to list model dir %s", dir)
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no model artifacts found in %s", dir)
	}
	sort.Strings(paths)

	r := &Registry{models: make(map[string]Model)}
	for _, path := range paths {
		m, err := loadArtifact(path)
		if err != nil {
			return nil, err
		}
		r.models[m.Name()] = m
		r.names = append(r.names, m.Name())
	}
	sort.Strings(r.names)
	return r, nil
}

func loadArtifact(path string) (Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read model artifact %s", path)
	}

	var kind struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &kind); err != nil {
		return nil, errors.Wrapf(err, "fail to parse model artifact %s", path)
	}

	switch strings.ToLower(kind.Type) {
	case "logistic":
		return parseLogistic(raw, path)
	case "forest":
		return parseForest(raw, path)
	default:
		return nil, errors.Errorf("model artifact %s has unknown type %q", path, kind.Type)
	}
}

// Get returns a model by name.
func (r *Registry) Get(name string) (Model, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, appErrors.NewModelNotFound(name)
	}
	return m, nil
}

// Names lists the loaded models in stable order.
func (r *Registry) Names() []string {
	return r.names
}

// NewRegistry builds a registry from in-memory models, used by tests and
// by callers that construct models directly.
func NewRegistry(models ...Model) *Registry {
	r := &Registry{models: make(map[string]Model)}
	for _, m := range models {
		r.models[m.Name()] = m
		r.names = append(r.names, m.Name())
	}
	sort.Strings(r.names)
	return r
}
