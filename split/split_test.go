package split_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davidvella/dumpsort"
	"github.com/davidvella/dumpsort/metrics"
	"github.com/davidvella/dumpsort/monitoring"
	spillpebble "github.com/davidvella/dumpsort/spill/pebble"
	"github.com/davidvella/dumpsort/split"
	"github.com/davidvella/dumpsort/storage/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	prologue = "\n" +
		"\n" +
		"--\n" +
		"-- Name: table1; Type: TABLE; Schema: public; Owner:\n" +
		"--\n" +
		"\n" +
		"(information for table1 goes here)\n"

	table1Copy = "\n" +
		"\n" +
		"-- Data for Name: table1; Type: TABLE DATA; Schema: public;\n" +
		"\n" +
		"COPY foo (id) FROM stdin;\n" +
		"3\n1\n4\n1\n5\n9\n2\n6\n5\n3\n8\n4\n" +
		"\\.\n"

	table1CopySorted = "\n" +
		"\n" +
		"-- Data for Name: table1; Type: TABLE DATA; Schema: public;\n" +
		"\n" +
		"COPY foo (id) FROM stdin;\n" +
		"1\n1\n2\n3\n3\n4\n4\n5\n5\n6\n8\n9\n" +
		"\\.\n"

	epilogue = "\n" +
		"-- epilogue\n"
)

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sql")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(content)
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSplitFile(t *testing.T) {
	for _, maxMemory := range []int{4, 190, 0} {
		t.Run(fmt.Sprint(maxMemory), func(t *testing.T) {
			path := writeDump(t, prologue+table1Copy+epilogue)
			dir := filepath.Dir(path)

			files, err := split.SplitFile(context.Background(), path, split.Options{
				MaxMemory: maxMemory,
				TempDir:   t.TempDir(),
			})
			require.NoError(t, err)

			assert.Equal(t, []string{"0000_prologue.sql", "0001_public.table1.sql", "9999_epilogue.sql"}, files)
			assert.Equal(t, []string{
				"0000_prologue.sql",
				"0001_public.table1.sql",
				"9999_epilogue.sql",
				"test.sql",
			}, dirEntries(t, dir))
			assert.Equal(t, prologue, readFile(t, dir, "0000_prologue.sql"))
			assert.Equal(t, table1CopySorted, readFile(t, dir, "0001_public.table1.sql"))
			assert.Equal(t, epilogue, readFile(t, dir, "9999_epilogue.sql"))
		})
	}
}

func TestSplit(t *testing.T) {
	dump := "SET client_encoding = 'UTF8';\n" +
		"\n" +
		"--\n" +
		"-- Data for Name: users; Type: TABLE DATA; Schema: app; Owner: me\n" +
		"--\n" +
		"\n" +
		"SET search_path = app, pg_catalog;\n" +
		"COPY users (id, name) FROM stdin;\n" +
		"10\tzed\n" +
		"9\tamy\n" +
		"\\N\tnobody\n" +
		"\\.\n" +
		"\n" +
		"--\n" +
		"-- Name: users_id_seq; Type: SEQUENCE SET; Schema: app; Owner: me\n" +
		"--\n" +
		"\n" +
		"SELECT pg_catalog.setval('users_id_seq', 10, true);\n" +
		"\n" +
		"--\n" +
		"-- Data for Name: empty; Type: TABLE DATA; Schema: public; Owner: me\n" +
		"--\n" +
		"\n" +
		"COPY public.empty FROM stdin;\n" +
		"\\.\n" +
		"\n" +
		"--\n" +
		"-- Name: users_pkey; Type: CONSTRAINT; Schema: app; Owner: me\n" +
		"--\n" +
		"\n" +
		"ALTER TABLE ONLY users ADD CONSTRAINT users_pkey PRIMARY KEY (id);\n" +
		"\n" +
		"--\n" +
		"-- PostgreSQL database dump complete\n" +
		"--\n" +
		"\n"

	want := map[string]string{
		"0000_prologue.sql": "SET client_encoding = 'UTF8';\n",
		"0001_app.users.sql": "\n" +
			"--\n" +
			"-- Data for Name: users; Type: TABLE DATA; Schema: app; Owner: me\n" +
			"--\n" +
			"\n" +
			"SET search_path = app, pg_catalog;\n" +
			"COPY users (id, name) FROM stdin;\n" +
			"\\N\tnobody\n" +
			"9\tamy\n" +
			"10\tzed\n" +
			"\\.\n" +
			"\n" +
			"--\n" +
			"-- Name: users_id_seq; Type: SEQUENCE SET; Schema: app; Owner: me\n" +
			"--\n" +
			"\n" +
			"SELECT pg_catalog.setval('users_id_seq', 10, true);\n",
		"0002_public.empty.sql": "\n" +
			"--\n" +
			"-- Data for Name: empty; Type: TABLE DATA; Schema: public; Owner: me\n" +
			"--\n" +
			"\n" +
			"COPY public.empty FROM stdin;\n" +
			"\\.\n",
		"9999_epilogue.sql": "\n" +
			"--\n" +
			"-- Name: users_pkey; Type: CONSTRAINT; Schema: app; Owner: me\n" +
			"--\n" +
			"\n" +
			"ALTER TABLE ONLY users ADD CONSTRAINT users_pkey PRIMARY KEY (id);\n" +
			"\n" +
			"--\n" +
			"-- PostgreSQL database dump complete\n" +
			"--\n" +
			"\n",
	}

	tests := []struct {
		name string
		opts split.Options
	}{
		{name: "in memory", opts: split.Options{}},
		{name: "file spill", opts: split.Options{MaxMemory: 1, TempDir: t.TempDir()}},
		{name: "pebble spill", opts: split.Options{MaxMemory: 1, Spill: spillpebble.Opener(t.TempDir())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			storage := local.NewLocalStorage(dir)

			files, err := split.New(storage, tt.opts).Split(context.Background(), strings.NewReader(dump))
			require.NoError(t, err)

			assert.Equal(t, []string{
				"0000_prologue.sql", "0001_app.users.sql", "0002_public.empty.sql", "9999_epilogue.sql",
			}, files)

			listed, err := storage.List(context.Background())
			require.NoError(t, err)
			assert.Equal(t, files, listed)

			var joined strings.Builder
			for _, name := range files {
				got := readFile(t, dir, name)
				assert.Equal(t, want[name], got, name)
				joined.WriteString(got)
			}
			assert.Len(t, joined.String(), len(dump))
		})
	}
}

func TestSplitWithoutTableData(t *testing.T) {
	dump := "\n--\n-- schema only\n--\n\nCREATE TABLE t (id int);\n\n"
	dir := t.TempDir()

	files, err := split.New(local.NewLocalStorage(dir), split.Options{}).Split(context.Background(), strings.NewReader(dump))
	require.NoError(t, err)

	assert.Equal(t, []string{split.PrologueName}, files)
	assert.Equal(t, dump, readFile(t, dir, split.PrologueName))
}

func TestSplitTruncatedCopy(t *testing.T) {
	dump := prologue + "-- Data for Name: t; Type: TABLE DATA; Schema: public;\nCOPY t FROM stdin;\n2\n1\n"
	dir := t.TempDir()

	_, err := split.New(local.NewLocalStorage(dir), split.Options{MaxMemory: 1, TempDir: t.TempDir()}).
		Split(context.Background(), strings.NewReader(dump))
	require.ErrorIs(t, err, dumpsort.ErrTruncatedInput)

	// The prologue was complete and stays; the table file never appears.
	assert.Equal(t, []string{split.PrologueName}, dirEntries(t, dir))
}

func TestSplitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := split.New(local.NewLocalStorage(dir), split.Options{}).
		Split(ctx, strings.NewReader(prologue+table1Copy+epilogue))
	require.ErrorIs(t, err, context.Canceled)
	// The prologue was still being written when the split stopped.
	assert.Empty(t, dirEntries(t, dir))
}

// failingStorage refuses to create files after the first n.
type failingStorage struct {
	*local.Storage
	n int
}

func (s *failingStorage) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if s.n == 0 {
		return nil, os.ErrPermission
	}
	s.n--
	return s.Storage.Create(ctx, name)
}

func TestSplitCreateError(t *testing.T) {
	storage := &failingStorage{Storage: local.NewLocalStorage(t.TempDir()), n: 1}

	_, err := split.New(storage, split.Options{}).Split(context.Background(), strings.NewReader(prologue+table1Copy))
	require.ErrorIs(t, err, dumpsort.ErrIO)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestSplitLogsAndMetrics(t *testing.T) {
	var logs bytes.Buffer
	registry := metrics.NewRegistry()
	opts := split.Options{
		Logger:  monitoring.NewLogger("split", &logs, monitoring.DEBUG),
		Metrics: registry,
	}

	_, err := split.New(local.NewLocalStorage(t.TempDir()), opts).
		Split(context.Background(), strings.NewReader(prologue+table1Copy+epilogue))
	require.NoError(t, err)

	out := logs.String()
	assert.Equal(t, 3, strings.Count(out, `"event_type":"file_opened"`))
	assert.Equal(t, 1, strings.Count(out, `"event_type":"copy_sorted"`))
	assert.Equal(t, 1, strings.Count(out, `"event_type":"range_sorted"`))
	assert.Equal(t, 12.0, registry.Total(dumpsort.MetricLinesSorted))
}

func TestIsCopyStatement(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"COPY table_name (column1, column2) FROM stdin;\n", true},
		{"COPY   table_name   (column1,   column2)   FROM   stdin;\n", true},
		{"COPY table_name FROM stdin;\n", true},
		{"COPY   table_name   FROM   stdin;\n", true},
		{"COPY table_name FROM stdin;\r\n", true},
		{"COPYtable_name FROM stdin;\n", false},
		{"COPY table_name FROMstdin;\n", false},
		{"COPY table_name FROM ;\n", false},
		{"COPY table_name stdin;\n", false},
		{"COPY FROM stdin;\n", false},
		{"COPY table_name FROM stdin;", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, split.IsCopyStatement(tt.line))
		})
	}
}
