package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gamma-omg/graphrag-mcp/docstore"
	"github.com/gamma-omg/graphrag-mcp/graph"
)

type DocStore interface {
	Injest(ctx context.Context, doc docstore.Doc) error
	Forget(ctx context.Context, doc docstore.InjestedDoc) error
	GetInjested(ctx context.Context) ([]docstore.InjestedDoc, error)
}

type GraphStore interface {
	AddDoc(file string, nodes []graph.Node) error
	RemoveDoc(file string) error
	ClearRetrieverCache() error
}

type FileReader interface {
	CanRead(path string) bool
	Text(path string) (string, bool)
}

type Chunkifier interface {
	Chunkify(text string) []string
}

// DocRegistry keeps the doc root, the vector store and the graph index
// consistent. Document paths are stored relative to the root.
type DocRegistry struct {
	log              *slog.Logger
	root             string
	mergeEventsDelay time.Duration
	store            DocStore
	graph            GraphStore
	chunkifier       Chunkifier
	readers          []FileReader

	mu      sync.Mutex
	known   map[string]uint32
	pending map[string]*time.Timer
}

func (dr *DocRegistry) RegisterReader(readers ...FileReader) {
	dr.readers = append(dr.readers, readers...)
}

func (dr *DocRegistry) Sync(ctx context.Context) error {
	disk, err := dr.collectDocs()
	if err != nil {
		return err
	}

	diskMap := make(diskDocs)
	for _, d := range disk {
		diskMap[d.File] = d
	}

	db, err := dr.store.GetInjested(ctx)
	if err != nil {
		return err
	}

	dbMap := make(dbDocs)
	for _, d := range db {
		dbMap[d.File] = d
		dr.remember(d.File, d.Crc)
	}

	if !needsSync(diskMap, dbMap) {
		return nil
	}

	err = dr.forgetRemovedDocuments(ctx, diskMap, dbMap)
	if err != nil {
		return err
	}

	err = dr.injestNewDocuments(ctx, diskMap, dbMap)
	if err != nil {
		return err
	}

	return dr.graph.ClearRetrieverCache()
}

// Watch reacts to doc root changes until ctx is cancelled. It returns once
// the watcher is running.
func (dr *DocRegistry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create doc root watcher: %w", err)
	}

	if err := watcher.Add(dr.root); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dr.root, err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				dr.handleEvent(ctx, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				dr.log.Error(fmt.Sprintf("doc root watch error: %s", err))
			}
		}
	}()

	return nil
}

func (dr *DocRegistry) handleEvent(ctx context.Context, event fsnotify.Event) {
	file, err := filepath.Rel(dr.root, event.Name)
	if err != nil {
		dr.log.Error(fmt.Sprintf("failed to resolve path %s: %s", event.Name, err))
		return
	}

	switch {
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		dr.scheduleUpsert(ctx, file)
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		forgot, err := dr.forgetDoc(ctx, file)
		if err != nil {
			dr.log.Error(fmt.Sprintf("failed to forget document %s: %s", file, err))
			return
		}

		if forgot {
			dr.clearRetrieverCache()
		}
	}
}

// scheduleUpsert merges rapid write bursts into a single upsert per file.
func (dr *DocRegistry) scheduleUpsert(ctx context.Context, file string) {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if dr.pending == nil {
		dr.pending = make(map[string]*time.Timer)
	}

	if timer, ok := dr.pending[file]; ok {
		timer.Stop()
	}

	dr.pending[file] = time.AfterFunc(dr.mergeEventsDelay, func() {
		dr.mu.Lock()
		delete(dr.pending, file)
		dr.mu.Unlock()

		if err := dr.upsertDoc(ctx, file); err != nil {
			dr.log.Error(fmt.Sprintf("failed to update document %s: %s", file, err))
		}
	})
}

func (dr *DocRegistry) upsertDoc(ctx context.Context, file string) error {
	reader, err := dr.findReader(file)
	if err != nil {
		dr.log.Warn(fmt.Sprintf("unsupported file: %s", file))
		return nil
	}

	text, ok := reader.Text(filepath.Join(dr.root, file))
	if !ok {
		// the reader already logged the cause
		return nil
	}

	crc := crc32.Checksum([]byte(text), crc32.IEEETable)

	dr.mu.Lock()
	oldCrc, existed := dr.known[file]
	dr.mu.Unlock()

	if existed && oldCrc == crc {
		return nil
	}

	if existed {
		if _, err := dr.forgetDoc(ctx, file); err != nil {
			return err
		}
	}

	if err := dr.injestDoc(ctx, file, crc, text); err != nil {
		return err
	}

	dr.clearRetrieverCache()
	return nil
}

func (dr *DocRegistry) collectDocs() (docs []DiskDoc, err error) {
	err = filepath.Walk(dr.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		file, e := filepath.Rel(dr.root, path)
		if e != nil {
			return e
		}

		reader, e := dr.findReader(file)
		if e != nil {
			dr.log.Warn(fmt.Sprintf("unsupported file: %s", file))
			return nil
		}

		text, ok := reader.Text(path)
		if !ok {
			return nil
		}

		docs = append(docs, DiskDoc{
			File: file,
			Crc:  crc32.Checksum([]byte(text), crc32.IEEETable),
		})

		return nil
	})
	if err != nil {
		return
	}

	return
}

func (dr *DocRegistry) injestNewDocuments(ctx context.Context, disk diskDocs, db dbDocs) error {
	for _, diskDoc := range disk {
		dbDoc, ok := db[diskDoc.File]
		if ok && dbDoc.Crc == diskDoc.Crc {
			continue
		}

		reader, err := dr.findReader(diskDoc.File)
		if err != nil {
			return fmt.Errorf("failed to find reader for document %s: %w", diskDoc.File, err)
		}

		text, ok := reader.Text(filepath.Join(dr.root, diskDoc.File))
		if !ok {
			dr.log.Warn(fmt.Sprintf("skipping document %s", diskDoc.File))
			continue
		}

		if err := dr.injestDoc(ctx, diskDoc.File, diskDoc.Crc, text); err != nil {
			return err
		}
	}

	return nil
}

func (dr *DocRegistry) forgetRemovedDocuments(ctx context.Context, disk diskDocs, db dbDocs) error {
	for _, dbDoc := range db {
		diskDoc, ok := disk[dbDoc.File]
		if ok && diskDoc.Crc == dbDoc.Crc {
			continue
		}

		if _, err := dr.forgetDoc(ctx, dbDoc.File); err != nil {
			return err
		}
	}

	return nil
}

func (dr *DocRegistry) injestDoc(ctx context.Context, file string, crc uint32, text string) error {
	chunks, nodes := buildChunks(file, crc, dr.chunkifier.Chunkify(text))

	err := dr.store.Injest(ctx, docstore.Doc{
		File:   file,
		Crc:    crc,
		Chunks: chunks,
	})
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", file, err)
	}

	if err := dr.graph.AddDoc(file, nodes); err != nil {
		return err
	}

	dr.remember(file, crc)
	return nil
}

func (dr *DocRegistry) forgetDoc(ctx context.Context, file string) (bool, error) {
	dr.mu.Lock()
	crc, ok := dr.known[file]
	delete(dr.known, file)
	dr.mu.Unlock()

	if !ok {
		return false, nil
	}

	err := dr.store.Forget(ctx, docstore.InjestedDoc{File: file, Crc: crc})
	if err != nil {
		return false, fmt.Errorf("failed to remove document %s from store: %w", file, err)
	}

	if err := dr.graph.RemoveDoc(file); err != nil {
		return false, err
	}

	return true, nil
}

func (dr *DocRegistry) findReader(file string) (FileReader, error) {
	for _, r := range dr.readers {
		if r.CanRead(file) {
			return r, nil
		}
	}

	return nil, fmt.Errorf("unable to find reader for file type: %s", filepath.Ext(file))
}

func (dr *DocRegistry) remember(file string, crc uint32) {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if dr.known == nil {
		dr.known = make(map[string]uint32)
	}

	dr.known[file] = crc
}

func (dr *DocRegistry) clearRetrieverCache() {
	if err := dr.graph.ClearRetrieverCache(); err != nil {
		dr.log.Error(fmt.Sprintf("failed to clear retriever cache: %s", err))
	}
}

func needsSync(disk diskDocs, db dbDocs) bool {
	for file, d := range disk {
		dbDoc, ok := db[file]
		if !ok || dbDoc.Crc != d.Crc {
			return true
		}
	}

	for file, d := range db {
		diskDoc, ok := disk[file]
		if !ok || diskDoc.Crc != d.Crc {
			return true
		}
	}

	return false
}
