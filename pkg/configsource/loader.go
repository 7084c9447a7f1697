// Package configsource loads the namespace configuration repository and
// cross-references it against observed namespaces. The repository is a
// directory tree keyed foundation/cluster/namespace with one definition file
// per namespace.
package configsource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// ErrUnavailable means the configuration tree as a whole cannot be read.
// The pipeline degrades instead of failing: every record gets
// has_config=false and the drift report stays empty.
var ErrUnavailable = errors.New("configuration source unavailable")

// Loader reads ConfiguredNamespace definitions from a repository checkout.
type Loader struct {
	root   string
	logger *zap.Logger
}

// NewLoader returns a Loader rooted at the repository checkout.
func NewLoader(root string, logger *zap.Logger) *Loader {
	return &Loader{root: root, logger: logger}
}

// leafFile is the on-disk shape of one namespace definition. Identity comes
// from the file's position in the tree, not from its content.
type leafFile struct {
	AppID       string                  `json:"app_id"`
	AppGUID     string                  `json:"app_guid"`
	Environment string                  `json:"environment"`
	Resources   models.ResourceSettings `json:"resources"`
	Usergroups  []string                `json:"usergroups"`
}

// Load walks the tree and returns every parseable namespace definition,
// sorted by identity. A missing or unreadable root is ErrUnavailable;
// individual malformed leaves are logged and skipped.
func (l *Loader) Load() ([]models.ConfiguredNamespace, error) {
	if l.root == "" {
		return nil, ErrUnavailable
	}
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnavailable, l.root)
	}

	var configs []models.ConfiguredNamespace
	seen := make(map[models.RecordKey]string)
	foundations, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, foundation := range foundations {
		if !foundation.IsDir() {
			continue
		}
		foundationDir := filepath.Join(l.root, foundation.Name())

		clusters, err := os.ReadDir(foundationDir)
		if err != nil {
			l.logger.Warn("skipping unreadable foundation directory",
				zap.String("dir", foundationDir),
				zap.Error(err))
			continue
		}

		for _, cluster := range clusters {
			if !cluster.IsDir() {
				continue
			}
			clusterDir := filepath.Join(foundationDir, cluster.Name())

			leaves, err := os.ReadDir(clusterDir)
			if err != nil {
				l.logger.Warn("skipping unreadable cluster directory",
					zap.String("dir", clusterDir),
					zap.Error(err))
				continue
			}

			for _, leaf := range leaves {
				if leaf.IsDir() {
					continue
				}
				namespace, ok := namespaceFromFilename(leaf.Name())
				if !ok {
					continue
				}
				path := filepath.Join(clusterDir, leaf.Name())

				cfg, err := l.loadLeaf(path, foundation.Name(), cluster.Name(), namespace)
				if err != nil {
					l.logger.Warn("skipping malformed namespace definition",
						zap.String("file", path),
						zap.Error(err))
					continue
				}
				// One definition per namespace; a second file for the
				// same identity (say app.json next to app.yaml) loses.
				if prev, dup := seen[cfg.Key()]; dup {
					l.logger.Warn("duplicate namespace definition ignored",
						zap.String("file", path),
						zap.String("kept", prev))
					continue
				}
				seen[cfg.Key()] = path
				configs = append(configs, cfg)
			}
		}
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Key().Less(configs[j].Key())
	})

	l.logger.Info("loaded configuration source",
		zap.String("root", l.root),
		zap.Int("namespaces", len(configs)))
	return configs, nil
}

func (l *Loader) loadLeaf(path, foundation, cluster, namespace string) (models.ConfiguredNamespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ConfiguredNamespace{}, err
	}

	var leaf leafFile
	if err := yaml.Unmarshal(data, &leaf); err != nil {
		return models.ConfiguredNamespace{}, err
	}

	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		rel = path
	}

	appID := strings.TrimSpace(leaf.AppID)
	if appID == "" {
		appID = "unknown"
	}

	return models.ConfiguredNamespace{
		Namespace:   namespace,
		Cluster:     cluster,
		Foundation:  foundation,
		AppID:       appID,
		AppGUID:     leaf.AppGUID,
		Environment: models.NormalizeEnvironment(leaf.Environment),
		Resources:   leaf.Resources,
		Usergroups:  leaf.Usergroups,
		Source:      rel,
	}, nil
}

// namespaceFromFilename strips a recognized definition extension. Files with
// other extensions are not namespace definitions.
func namespaceFromFilename(name string) (string, bool) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}
