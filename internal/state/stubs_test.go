package state

import (
	"context"
	"errors"
)

// fakeFS implements Filesystem over an in-memory file set.
type fakeFS struct {
	files    map[string][]byte
	writeErr error
	writes   []string
}

func newFakeFS(paths ...string) *fakeFS {
	files := make(map[string][]byte, len(paths))
	for _, path := range paths {
		files[path] = []byte{}
	}
	return &fakeFS{files: files}
}

func (f *fakeFS) Exists(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeFS) WriteFile(path string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.files[path] = data
	f.writes = append(f.writes, path)
	return nil
}

// fakeGrains implements GrainStore over a plain map, counting mutations.
type fakeGrains struct {
	values map[string]any
	setErr error
	sets   int
}

func newFakeGrains() *fakeGrains {
	return &fakeGrains{values: map[string]any{}}
}

func (g *fakeGrains) Keys() []string {
	keys := make([]string, 0, len(g.values))
	for key := range g.values {
		keys = append(keys, key)
	}
	return keys
}

func (g *fakeGrains) Get(name string) any {
	return g.values[name]
}

func (g *fakeGrains) Set(name string, value any) error {
	if g.setErr != nil {
		return g.setErr
	}
	g.sets++
	g.values[name] = value
	return nil
}

// fakeCommands records which capabilities were invoked and replies with a
// canned result.
type fakeCommands struct {
	result   CommandResult
	err      error
	calls    []string
	lastPort int
}

func (c *fakeCommands) GenerateTicket(_ context.Context, subject, secret string) (CommandResult, error) {
	c.calls = append(c.calls, "generate_ticket")
	return c.result, c.err
}

func (c *fakeCommands) GenerateCert(_ context.Context, subject string) (CommandResult, error) {
	c.calls = append(c.calls, "generate_cert")
	return c.result, c.err
}

func (c *fakeCommands) SaveCert(_ context.Context, subject, parent string) (CommandResult, error) {
	c.calls = append(c.calls, "save_cert")
	return c.result, c.err
}

func (c *fakeCommands) RequestCert(_ context.Context, subject, parent, ticket string, port int) (CommandResult, error) {
	c.calls = append(c.calls, "request_cert")
	c.lastPort = port
	return c.result, c.err
}

func (c *fakeCommands) NodeSetup(_ context.Context, subject, parent, ticket string) (CommandResult, error) {
	c.calls = append(c.calls, "node_setup")
	return c.result, c.err
}

var errStub = errors.New("stub failure")

func testContext(commands *fakeCommands, files *fakeFS, grains *fakeGrains, dryRun bool) *RunContext {
	if files == nil {
		files = newFakeFS()
	}
	if grains == nil {
		grains = newFakeGrains()
	}
	return &RunContext{
		DryRun:   dryRun,
		CertsDir: "/var/lib/icinga2/certs",
		Files:    files,
		Grains:   grains,
		Commands: commands,
	}
}
