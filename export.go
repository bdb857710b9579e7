package querymon

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/querymon/querymon/blobstore"
	"github.com/querymon/querymon/codec"
	"github.com/querymon/querymon/query"
)

// exportManifest describes one exported corpus: the codec used for the
// part blobs and the part names in order.
type exportManifest struct {
	Codec   string   `json:"codec"`
	Queries int      `json:"queries"`
	Parts   []string `json:"parts"`
}

// exportedQuery is the serialized form of one registered query.
type exportedQuery struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Query    query.Node        `json:"query"`
}

// Export writes the live query set to the store under the given name:
// a JSON manifest at <name>/manifest.json plus codec-encoded parts of
// up to the configured part size. Parts are uploaded in parallel.
//
// Queries whose type cannot be serialized fail the export with
// query.ErrUnsupportedQuery.
func (m *Monitor) Export(ctx context.Context, store blobstore.Store, name string) error {
	if m.closed.Load() {
		return ErrClosed
	}

	var (
		exported []exportedQuery
		convErr  error
	)
	err := m.ScanQueries(ctx, func(mq MonitorQuery) bool {
		n, nerr := query.ToNode(mq.Query)
		if nerr != nil {
			convErr = fmt.Errorf("query %q: %w", mq.ID, nerr)
			return false
		}
		exported = append(exported, exportedQuery{
			ID:       mq.ID,
			Metadata: mq.Metadata,
			Query:    n,
		})
		return true
	})
	if err == nil {
		err = convErr
	}
	if err != nil {
		m.logger.LogExport(ctx, name, 0, 0, err)
		return err
	}

	partSize := m.opts.exportPartSize
	numParts := (len(exported) + partSize - 1) / partSize

	manifest := exportManifest{
		Codec:   m.opts.codec.Name(),
		Queries: len(exported),
		Parts:   make([]string, numParts),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := 0; i < numParts; i++ {
		partName := path.Join(name, fmt.Sprintf("part-%05d", i))
		manifest.Parts[i] = partName

		lo := i * partSize
		hi := min(lo+partSize, len(exported))
		part := exported[lo:hi]
		g.Go(func() error {
			data, err := m.opts.codec.Marshal(part)
			if err != nil {
				return fmt.Errorf("encode part %s: %w", partName, err)
			}
			return store.Put(gctx, partName, data)
		})
	}
	if err := g.Wait(); err != nil {
		m.logger.LogExport(ctx, name, len(exported), numParts, err)
		return err
	}

	data, err := codec.JSON{}.Marshal(manifest)
	if err != nil {
		return err
	}
	err = store.Put(ctx, path.Join(name, "manifest.json"), data)
	m.logger.LogExport(ctx, name, len(exported), numParts, err)
	return err
}

// Import reads a corpus previously written by Export and registers its
// queries, replacing any already-registered ids. The manifest names
// the codec; the import fails if that codec is not known to this
// build.
func (m *Monitor) Import(ctx context.Context, store blobstore.Store, name string) error {
	if m.closed.Load() {
		return ErrClosed
	}

	raw, err := blobstore.ReadAll(ctx, store, path.Join(name, "manifest.json"))
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var manifest exportManifest
	if err := (codec.JSON{}).Unmarshal(raw, &manifest); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	c, ok := codec.ByName(manifest.Codec)
	if !ok {
		return fmt.Errorf("%w: unknown codec %q", ErrInvalidArgument, manifest.Codec)
	}

	parts := make([][]exportedQuery, len(manifest.Parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, partName := range manifest.Parts {
		g.Go(func() error {
			data, err := blobstore.ReadAll(gctx, store, partName)
			if err != nil {
				return fmt.Errorf("read part %s: %w", partName, err)
			}
			var part []exportedQuery
			if err := c.Unmarshal(data, &part); err != nil {
				return fmt.Errorf("decode part %s: %w", partName, err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	queries := make([]MonitorQuery, 0, manifest.Queries)
	for _, part := range parts {
		for _, eq := range part {
			q, err := eq.Query.Query()
			if err != nil {
				return fmt.Errorf("rebuild query %q: %w", eq.ID, err)
			}
			queries = append(queries, MonitorQuery{
				ID:       eq.ID,
				Query:    q,
				Metadata: eq.Metadata,
			})
		}
	}
	return m.Register(ctx, queries...)
}
