package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffxlabs/ffxproj/internal/project"
)

// scriptedPrompter returns predetermined prompt answers for testing.
type scriptedPrompter struct {
	openPath   string
	savePath   string
	cancelOpen bool
	cancelSave bool
	err        error

	savePrompts int
	openPrompts int
}

func (p *scriptedPrompter) OpenPath() (string, bool, error) {
	p.openPrompts++
	if p.err != nil {
		return "", false, p.err
	}
	if p.cancelOpen {
		return "", false, nil
	}
	return p.openPath, true, nil
}

func (p *scriptedPrompter) SavePath(defaultPath string) (string, bool, error) {
	p.savePrompts++
	if p.err != nil {
		return "", false, p.err
	}
	if p.cancelSave {
		return "", false, nil
	}
	if p.savePath != "" {
		return p.savePath, true, nil
	}
	return defaultPath, true, nil
}

// panicService panics on every I/O operation. Used to prove the gateway
// boundary converts panics into result values.
type panicService struct{}

func (panicService) CheckExists(string) (string, bool, error)          { return "", false, nil }
func (panicService) DefaultPath(root string) string                    { return root + "/p.ffxproj" }
func (panicService) Save(project.Document, string) (int64, error)      { panic("save exploded") }
func (panicService) Load(string) (project.Document, error)             { panic("load exploded") }
func (panicService) Username() string                                  { return "alice" }
func (panicService) AppVersion() string                                { return "0.3.0" }

func newTestGateway(t *testing.T, prompter Prompter) (*Gateway, *FileService) {
	t.Helper()
	svc := NewFileService("alice", "0.3.0")
	return NewGateway(svc, prompter, openTestCatalog(t), nil), svc
}

func TestGateway_ResolveSavePath_ExplicitWins(t *testing.T) {
	prompter := &scriptedPrompter{}
	g, _ := newTestGateway(t, prompter)

	path, cancelled, err := g.ResolveSavePath("/explicit.ffxproj", "/known.ffxproj", "/root")

	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, "/explicit.ffxproj", path)
	assert.Zero(t, prompter.savePrompts, "no prompt when a path is supplied")
}

func TestGateway_ResolveSavePath_KnownPathSecond(t *testing.T) {
	g, _ := newTestGateway(t, &scriptedPrompter{})

	path, cancelled, err := g.ResolveSavePath("", "/known.ffxproj", "/root")

	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, "/known.ffxproj", path)
}

func TestGateway_ResolveSavePath_PromptsWithDefault(t *testing.T) {
	prompter := &scriptedPrompter{}
	g, svc := newTestGateway(t, prompter)

	path, cancelled, err := g.ResolveSavePath("", "", "/case/001")

	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, svc.DefaultPath("/case/001"), path)
	assert.Equal(t, 1, prompter.savePrompts)
}

func TestGateway_ResolveSavePath_CancelledIsBenign(t *testing.T) {
	g, _ := newTestGateway(t, &scriptedPrompter{cancelSave: true})

	path, cancelled, err := g.ResolveSavePath("", "", "/case/001")

	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Empty(t, path)
}

func TestGateway_ResolveOpenPath_CancelledIsBenign(t *testing.T) {
	g, _ := newTestGateway(t, &scriptedPrompter{cancelOpen: true})

	_, cancelled, err := g.ResolveOpenPath("")

	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestGateway_SaveThenLoad(t *testing.T) {
	g, svc := newTestGateway(t, &scriptedPrompter{})
	ctx := context.Background()
	root := t.TempDir()
	doc := testDocument(t, root)
	path := svc.DefaultPath(root)

	checksum, err := project.Checksum(doc)
	require.NoError(t, err)
	doc.Checksum = checksum
	doc.SavedAt = project.NowISO(testInstant)
	doc.LastSavedBy = "alice"

	saveRes := g.Save(ctx, doc, path)
	require.NoError(t, saveRes.Err)
	assert.True(t, saveRes.Success)
	assert.Equal(t, path, saveRes.Path)
	assert.Greater(t, saveRes.BytesWritten, int64(0))

	loadRes := g.Load(ctx, path, testInstant)
	require.NoError(t, loadRes.Err)
	require.NotNil(t, loadRes.Project)
	assert.Empty(t, loadRes.Warnings, "clean round trip yields no warnings")
	assert.Equal(t, doc.ID, loadRes.Project.ID)

	// Both operations landed in the catalog.
	entries, err := g.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, root, entries[0].RootPath)
	assert.Equal(t, int64(1), entries[0].OpenedCount)
}

func TestGateway_Load_OlderVersionWarns(t *testing.T) {
	g, svc := newTestGateway(t, &scriptedPrompter{})
	root := t.TempDir()
	doc := testDocument(t, root)
	doc.Version = 1
	path := svc.DefaultPath(root)
	_, err := svc.Save(doc, path)
	require.NoError(t, err)

	res := g.Load(context.Background(), path, testInstant)

	require.NoError(t, res.Err)
	require.NotNil(t, res.Project)
	assert.Equal(t, 1, res.Project.Version, "loaded as-is, no migration")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "predates")
}

func TestGateway_Load_NewerVersionRefused(t *testing.T) {
	g, svc := newTestGateway(t, &scriptedPrompter{})
	root := t.TempDir()
	doc := testDocument(t, root)
	doc.Version = project.SchemaVersion + 1
	path := svc.DefaultPath(root)
	_, err := svc.Save(doc, path)
	require.NoError(t, err)

	res := g.Load(context.Background(), path, testInstant)

	require.Error(t, res.Err)
	assert.True(t, IsVersionAheadError(res.Err))
	assert.Nil(t, res.Project)
}

func TestGateway_Load_ChecksumDriftWarns(t *testing.T) {
	g, svc := newTestGateway(t, &scriptedPrompter{})
	root := t.TempDir()
	doc := testDocument(t, root)
	doc.Checksum = "0000000000000000000000000000000000000000000000000000000000000000"
	path := svc.DefaultPath(root)
	_, err := svc.Save(doc, path)
	require.NoError(t, err)

	res := g.Load(context.Background(), path, testInstant)

	require.NoError(t, res.Err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "checksum")
}

func TestGateway_Load_MissingFileIsResultNotPanic(t *testing.T) {
	g, _ := newTestGateway(t, &scriptedPrompter{})

	res := g.Load(context.Background(), "/does/not/exist.ffxproj", testInstant)

	require.Error(t, res.Err)
	assert.Nil(t, res.Project)
}

func TestGateway_PanicsBecomeResults(t *testing.T) {
	g := NewGateway(panicService{}, &scriptedPrompter{}, nil, nil)
	ctx := context.Background()

	saveRes := g.Save(ctx, project.Document{}, "/p.ffxproj")
	require.Error(t, saveRes.Err)
	var se *StorageError
	require.ErrorAs(t, saveRes.Err, &se)
	assert.Equal(t, ErrCodePanic, se.Code)

	loadRes := g.Load(ctx, "/p.ffxproj", testInstant)
	require.Error(t, loadRes.Err)
	require.ErrorAs(t, loadRes.Err, &se)
	assert.Equal(t, ErrCodePanic, se.Code)
}

func TestGateway_CheckProjectExists_CatalogFallback(t *testing.T) {
	g, _ := newTestGateway(t, &scriptedPrompter{})
	ctx := context.Background()

	// Nothing on disk, nothing in the catalog.
	_, found := g.CheckProjectExists(ctx, "/case/001")
	assert.False(t, found)

	// A custom-location save recorded in the catalog is still found.
	require.NoError(t, g.catalog.RecordSave(ctx, "/case/001", "/elsewhere/001.ffxproj", "001", "alice", "t0"))
	path, found := g.CheckProjectExists(ctx, "/case/001")
	require.True(t, found)
	assert.Equal(t, "/elsewhere/001.ffxproj", path)
}
