//go:build !darwin

package reveal

func selectFile(path string) error {
	return ErrUnsupported
}
