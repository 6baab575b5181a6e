package nsmigrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/nsmigrate/core/testutil"
)

// newModulesDir returns an empty modules directory inside a fresh temp dir,
// so the sibling work directory is cleaned up with it.
func newModulesDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "modules")
	require.NoError(t, os.Mkdir(dir, 0o755))
	return dir
}

func writeModuleFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readString(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func TestTransformModules(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	txt := writeModuleFile(t, modules, "javax/foo/bar/main/foo.txt", "hello")
	json := writeModuleFile(t, modules, "javax/json/api/main/module.xml",
		"<module xmlns=\"urn:jboss:module:1.9\" name=\"javax.json.api\">\n</module>")
	bind := writeModuleFile(t, modules, "javax/json/bind/api/main/module.xml",
		"<module xmlns=\"urn:jboss:module:1.9\" name=\"javax.json.bind.api\">\n"+
			"    <dependencies>\n"+
			"        <module name=\"javax.json.api\"/>\n"+
			"    </dependencies>\n"+
			"</module>")
	other := writeModuleFile(t, modules, "foo/main/module.xml",
		"<module xmlns=\"urn:jboss:module:1.9\" name=\"foo\">\n"+
			"    <dependencies>\n"+
			"        <module name=\"javax.json.api\"/>\n"+
			"        <module name=\"javax.json.bind.api\"/>\n"+
			"    </dependencies>\n"+
			"</module>")

	result, err := TransformModules(context.Background(), modules)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "hello", readString(t, txt))

	assert.NoFileExists(t, json)
	jakartaJSON := readString(t, filepath.Join(modules, "jakarta", "json", "api", "main", "module.xml"))
	assert.NotContains(t, jakartaJSON, "javax")
	assert.Contains(t, jakartaJSON, `name="jakarta.json.api"`)

	assert.NoFileExists(t, bind)
	jakartaBind := readString(t, filepath.Join(modules, "jakarta", "json", "bind", "api", "main", "module.xml"))
	assert.Equal(t, "<module xmlns=\"urn:jboss:module:1.9\" name=\"jakarta.json.bind.api\">\n"+
		"    <dependencies>\n"+
		"        <module name=\"jakarta.json.api\"/>\n"+
		"    </dependencies>\n"+
		"</module>", jakartaBind)

	otherXML := readString(t, other)
	assert.NotContains(t, otherXML, "javax")
	assert.Contains(t, otherXML, "jakarta.json.api")
	assert.Contains(t, otherXML, "jakarta.json.bind.api")

	jsonMod := result["javax.json.api"]
	assert.Equal(t, "jakarta.json.api", jsonMod.Name)
	assert.Empty(t, jsonMod.Dependencies)
	assert.Equal(t, digest.FromString(jakartaJSON), jsonMod.Digest)

	bindMod := result["javax.json.bind.api"]
	assert.Equal(t, "jakarta.json.bind.api", bindMod.Name)
	assert.Equal(t, map[string]string{"javax.json.api": "jakarta.json.api"}, bindMod.Dependencies)

	fooMod := result["foo"]
	assert.Equal(t, "foo", fooMod.Name)
	assert.Equal(t, map[string]string{
		"javax.json.api":      "jakarta.json.api",
		"javax.json.bind.api": "jakarta.json.bind.api",
	}, fooMod.Dependencies)

	assert.NoDirExists(t, filepath.Join(filepath.Dir(modules), WorkDirName))
}

func TestTransformModules_CustomMappingFile(t *testing.T) {
	t.Parallel()

	mapping := filepath.Join(t.TempDir(), "custom.mapping")
	require.NoError(t, os.WriteFile(mapping,
		[]byte("javax/foo/api=jakarta/foo/api\njavax/foo/bind/api=jakarta/foo/bind/api"), 0o644))

	modules := newModulesDir(t)
	txt := writeModuleFile(t, modules, "javax/json/api/main/foo.txt", "hello")
	writeModuleFile(t, modules, "javax/foo/api/main/module.xml",
		"<module xmlns=\"urn:jboss:module:1.9\" name=\"javax.foo.api\">\n</module>")
	writeModuleFile(t, modules, "javax/foo/bind/api/main/module.xml",
		"<module xmlns=\"urn:jboss:module:1.9\" name=\"javax.foo.bind.api\">\n"+
			"    <dependencies>\n"+
			"        <module name=\"javax.foo.api\"/>\n"+
			"    </dependencies>\n"+
			"</module>")

	result, err := TransformModules(context.Background(), modules, ModulesWithMappingFile(mapping))
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "hello", readString(t, txt), "paths outside the custom mapping stay put")
	assert.FileExists(t, filepath.Join(modules, "jakarta", "foo", "api", "main", "module.xml"))

	bind := readString(t, filepath.Join(modules, "jakarta", "foo", "bind", "api", "main", "module.xml"))
	assert.NotContains(t, bind, "javax")
	assert.Contains(t, bind, "jakarta.foo.api")
	assert.Contains(t, bind, "jakarta.foo.bind.api")

	assert.Equal(t, "jakarta.foo.api", result["javax.foo.api"].Name)
	assert.Empty(t, result["javax.foo.api"].Dependencies)
	assert.Equal(t, map[string]string{"javax.foo.api": "jakarta.foo.api"}, result["javax.foo.bind.api"].Dependencies)
}

func TestTransformModules_EmptyDirectories(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	for _, rel := range []string{
		"javax/json/api",
		"jakarta/json/api",
		"javax/json/bind/api/main/foo",
		"jakarta/json/bind/api/main/foo",
		"foo/json/bind/api",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(modules, filepath.FromSlash(rel)), 0o755))
	}

	result, err := TransformModules(context.Background(), modules)
	require.NoError(t, err)
	assert.Empty(t, result)

	entries, err := os.ReadDir(modules)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "foo", entries[0].Name())
	assert.Equal(t, "jakarta", entries[1].Name())

	assert.NoDirExists(t, filepath.Join(modules, "javax"))
	assert.DirExists(t, filepath.Join(modules, "jakarta", "json", "api"))
	assert.DirExists(t, filepath.Join(modules, "jakarta", "json", "bind", "api", "main", "foo"))
	assert.DirExists(t, filepath.Join(modules, "foo", "json", "bind", "api"))
}

func TestTransformModules_LayersAndAddOns(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	writeModuleFile(t, modules, "system/layers/base/javax/json/api/main/module.xml",
		`<module name="javax.json.api"/>`)
	writeModuleFile(t, modules, "system/add-ons/extra/org/acme/main/module.xml",
		`<module name="org.acme"><dependencies><module name="javax.json.api"/></dependencies></module>`)
	writeModuleFile(t, modules, "system/layers.conf", "layers=base\n")

	result, err := TransformModules(context.Background(), modules)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, `<module name="jakarta.json.api"/>`,
		readString(t, filepath.Join(modules, "system", "layers", "base", "jakarta", "json", "api", "main", "module.xml")))
	assert.Equal(t, `<module name="org.acme"><dependencies><module name="jakarta.json.api"/></dependencies></module>`,
		readString(t, filepath.Join(modules, "system", "add-ons", "extra", "org", "acme", "main", "module.xml")))
	assert.Equal(t, "layers=base\n", readString(t, filepath.Join(modules, "system", "layers.conf")))
}

func TestTransformModules_Artifacts(t *testing.T) {
	t.Parallel()

	tr := newServletTransformer(t)
	jar := testutil.BuildArchive(t,
		testutil.ArchiveEntry{Name: "javax/servlet/Servlet.class", Data: testutil.SimpleClass("javax/servlet/Servlet")},
	)

	modules := newModulesDir(t)
	writeModuleFile(t, modules, "javax/servlet/api/main/module.xml", `<module name="javax.servlet.api"/>`)
	writeModuleFile(t, modules, "javax/servlet/api/main/servlet-api.jar", string(jar))

	_, err := TransformModules(context.Background(), modules, ModulesWithArtifacts(tr), ModulesWithWorkers(2))
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(modules, "jakarta", "servlet", "api", "main", "servlet-api.jar"))
	require.NoError(t, err)
	entries := testutil.ReadArchive(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "jakarta/servlet/Servlet.class", entries[0].Name)
}

func TestTransformModules_ArtifactsCopiedByDefault(t *testing.T) {
	t.Parallel()

	jar := string(testutil.BuildArchive(t,
		testutil.ArchiveEntry{Name: "javax/servlet/Servlet.class", Data: testutil.SimpleClass("javax/servlet/Servlet")},
	))
	modules := newModulesDir(t)
	p := writeModuleFile(t, modules, "org/acme/main/acme.jar", jar)

	_, err := TransformModules(context.Background(), modules)
	require.NoError(t, err)
	assert.Equal(t, jar, readString(t, p))
}

func TestTransformModules_FailureKeepsOriginal(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	bad := writeModuleFile(t, modules, "javax/json/api/main/module.xml", `<module name="javax.json.api">`)

	_, err := TransformModules(context.Background(), modules)
	require.ErrorIs(t, err, ErrMalformedDescriptor)

	assert.Equal(t, `<module name="javax.json.api">`, readString(t, bad))
	assert.NoDirExists(t, filepath.Join(filepath.Dir(modules), WorkDirName))
}

func TestTransformModules_FollowsLinks(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	shared := writeModuleFile(t, filepath.Dir(modules), "shared/lib.jar", "shared jar")
	layer := filepath.Join(modules, "system", "layers", "base")

	// a jar linked to a sibling file
	writeModuleFile(t, layer, "org/foo/main/foo-1.0.jar", "foo jar")
	fooLink := filepath.Join(layer, "org", "foo", "main", "foo.jar")
	require.NoError(t, os.Symlink("foo-1.0.jar", fooLink))

	// a jar linked to a file outside the repository, inside a moved module
	writeModuleFile(t, layer, "javax/json/api/main/module.xml", `<module name="javax.json.api"/>`)
	require.NoError(t, os.Symlink(shared, filepath.Join(layer, "javax", "json", "api", "main", "lib.jar")))

	// a module directory linked to another directory of the layer
	writeModuleFile(t, layer, "org/real/main/real.txt", "real")
	require.NoError(t, os.MkdirAll(filepath.Join(layer, "javax", "ejb"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join("..", "..", "org", "real"), filepath.Join(layer, "javax", "ejb", "api")))

	_, err := TransformModules(context.Background(), modules)
	require.NoError(t, err)

	info, err := os.Lstat(fooLink)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "links are replaced by the content they point to")
	assert.Equal(t, "foo jar", readString(t, fooLink))
	assert.Equal(t, "foo jar", readString(t, filepath.Join(layer, "org", "foo", "main", "foo-1.0.jar")))

	assert.Equal(t, "shared jar", readString(t, filepath.Join(layer, "jakarta", "json", "api", "main", "lib.jar")))
	assert.Equal(t, "shared jar", readString(t, shared))

	assert.Equal(t, "real", readString(t, filepath.Join(layer, "jakarta", "ejb", "api", "main", "real.txt")))
	assert.Equal(t, "real", readString(t, filepath.Join(layer, "org", "real", "main", "real.txt")))
	assert.NoDirExists(t, filepath.Join(layer, "javax", "ejb", "api"))
}

func TestTransformModules_LinkCycleKeepsOriginal(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	txt := writeModuleFile(t, modules, "javax/json/api/main/a.txt", "a")
	loop := filepath.Join(modules, "javax", "json", "api", "main", "loop")
	require.NoError(t, os.Symlink("..", loop))

	_, err := TransformModules(context.Background(), modules)
	require.ErrorIs(t, err, ErrLinkCycle)

	assert.Equal(t, "a", readString(t, txt))
	_, err = os.Lstat(loop)
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(filepath.Dir(modules), WorkDirName))
}

func TestTransformModules_DanglingLinkKeepsOriginal(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	txt := writeModuleFile(t, modules, "javax/json/api/main/a.txt", "a")
	require.NoError(t, os.Symlink("missing.jar", filepath.Join(modules, "javax", "json", "api", "main", "b.jar")))

	_, err := TransformModules(context.Background(), modules)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "a", readString(t, txt))
}

func TestTransformModules_DuplicateTarget(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	writeModuleFile(t, modules, "javax/json/api/main/a.txt", "old")
	writeModuleFile(t, modules, "jakarta/json/api/main/a.txt", "new")

	_, err := TransformModules(context.Background(), modules)
	require.ErrorIs(t, err, ErrDuplicateEntry)
	assert.FileExists(t, filepath.Join(modules, "javax", "json", "api", "main", "a.txt"))
}

func TestTransformModules_InvalidPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := TransformModules(context.Background(), filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = TransformModules(context.Background(), file)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestTransformModules_MissingMappingFile(t *testing.T) {
	t.Parallel()

	modules := newModulesDir(t)
	_, err := TransformModules(context.Background(), modules,
		ModulesWithMappingFile(filepath.Join(t.TempDir(), "foo")))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestModuleRules_Move(t *testing.T) {
	t.Parallel()

	r := newModuleRules(DefaultModuleMapping())
	for rel, want := range map[string]string{
		"javax/json/api/main/module.xml":      "jakarta/json/api/main/module.xml",
		"javax/json/bind/api/main/module.xml": "jakarta/json/bind/api/main/module.xml",
		"javax/json/api":                      "jakarta/json/api",
		"javax/json/apix/main/module.xml":     "javax/json/apix/main/module.xml",
		"org/javax/json/api/main/module.xml":  "org/javax/json/api/main/module.xml",
	} {
		got, _ := r.move(rel)
		assert.Equal(t, want, got, rel)
	}

	to, ok := r.lookup("javax.json.bind.api")
	assert.True(t, ok)
	assert.Equal(t, "jakarta.json.bind.api", to)
}
