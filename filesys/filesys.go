package filesys

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type TestFile struct {
	Dir  string
	Name string
	Data []byte
}

// Create a temp directory, and subdirectories of that and files in those directories as directed,
// and return the name of the temp directory.  The caller should remove the directory when it is no
// longer useful, normally by way of `defer`.  If a non-nil error is returned there will be no
// directory.

func PopulateTestData(tag string, data ...TestFile) (string, error) {
	tempdir, err := os.MkdirTemp("", tag+"_test")
	if err != nil {
		return "", err
	}
	for _, d := range data {
		err = os.MkdirAll(path.Join(tempdir, d.Dir), 0700)
		if err != nil {
			os.RemoveAll(tempdir)
			return "", err
		}
		err = os.WriteFile(path.Join(tempdir, d.Dir, d.Name), d.Data, 0600)
		if err != nil {
			os.RemoveAll(tempdir)
			return "", err
		}
	}
	return tempdir, nil
}

// Copy `from` to `to`, creating `to` if necessary with the permission bits of `from`.
func CopyFile(from, to string) error {
	info, err := os.Stat(from)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(from)
	if err != nil {
		return err
	}
	return os.WriteFile(to, data, info.Mode().Perm())
}

// Copy the files of `srcDir` to `targetDir`, recursively, creating `targetDir` and any
// subdirectories (and all files) as necessary.

func CopyDir(srcDir, targetDir string) error {
	err := os.Mkdir(targetDir, 0755)
	if err != nil && !os.IsExist(err) {
		return err
	}
	srcFS := os.DirFS(srcDir).(fs.StatFS)
	srcFilesAndDirs, err := fs.Glob(srcFS, "*")
	if err != nil {
		return err
	}
	for _, srcFileOrDir := range srcFilesAndDirs {
		err = copyEntry(path.Join(srcDir, srcFileOrDir), path.Join(targetDir, srcFileOrDir))
		if err != nil {
			return err
		}
	}
	return nil
}

func copyEntry(src, target string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return CopyDir(src, target)
	}
	return CopyFile(src, target)
}

// Copy everything that matches the glob `pattern` (which may have directory components) into
// `targetDir`, keeping the base names.  Directories are copied recursively.  Returns the base names
// that were copied.  A pattern that matches nothing is not an error.
//
// The target and its ancestors are never copied, nor is any match for which `skip` (may be nil)
// returns true.

func CopyMatching(pattern, targetDir string, skip func(name string) bool) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, err
	}
	copied := make([]string, 0, len(matches))
	for _, m := range matches {
		absM, err := filepath.Abs(m)
		if err != nil {
			return copied, err
		}
		if IsWithin(absTarget, absM) || (skip != nil && skip(m)) {
			continue
		}
		base := filepath.Base(m)
		err = copyEntry(m, filepath.Join(targetDir, base))
		if err != nil {
			return copied, err
		}
		copied = append(copied, base)
	}
	return copied, nil
}

// True if the cleaned absolute path `name` is `dir` or is below it.
func IsWithin(name, dir string) bool {
	if name == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(name, dir)
}

// Remove every file in `dir` whose name matches the glob `pattern`.  The number of files removed is
// returned.  A missing directory is not an error.

func RemoveMatching(dir, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
