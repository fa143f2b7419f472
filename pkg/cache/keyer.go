package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Key types, the first segment of every key a [Keyer] produces. They are
// also the key_type label of the cache hooks.
const (
	KeyTypeCluster = "cluster"
	KeyTypeRender  = "render"
)

// Keyer derives cache keys for every cached stage of a run.
type Keyer interface {
	// ClusterKey names the dendrogram of an edge list.
	ClusterKey(graphHash string, opts ClusterKeyOpts) string
	// RenderKey names a rendered picture of a dendrogram.
	RenderKey(clusterHash string, opts RenderKeyOpts) string
}

// ClusterKeyOpts holds the inputs, besides the edges, that change a
// clustering result.
type ClusterKeyOpts struct {
	Kind string `json:"kind"`
}

// RenderKeyOpts holds the inputs that change a rendered artifact.
type RenderKeyOpts struct {
	Format    string  `json:"format"`
	Detailed  bool    `json:"detailed"`
	Precision int     `json:"precision"`
	Scale     float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces readable keys: "cluster:<kind>:<sha256>" for
// dendrograms and "render:<format>:<sha256>" for artifacts, the hash covering
// the content hash and every option.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ClusterKey implements Keyer.
func (DefaultKeyer) ClusterKey(graphHash string, opts ClusterKeyOpts) string {
	return key(KeyTypeCluster, opts.Kind, graphHash, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(clusterHash string, opts RenderKeyOpts) string {
	return key(KeyTypeRender, opts.Format, clusterHash, opts)
}

func key(keyType, label, contentHash string, opts any) string {
	data, _ := json.Marshal(opts)
	sum := sha256.New()
	sum.Write([]byte(contentHash))
	sum.Write([]byte{0})
	sum.Write(data)
	if label == "" {
		label = "-"
	}
	return keyType + ":" + label + ":" + hex.EncodeToString(sum.Sum(nil))
}

// KeyType returns the key type of a key made by [DefaultKeyer], with or
// without a [ScopedKeyer] prefix, or "" when key has none.
func KeyType(key string) string {
	for _, t := range []string{KeyTypeCluster, KeyTypeRender} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return ""
}

// Hash returns the hex SHA-256 of data. The pipeline hashes edge lists and
// dendrograms with it to build cluster and render keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
