package instagram

import "io"

// progressReader counts bytes as an upload body is consumed.
type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	onProg func(read, total int64)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		if pr.onProg != nil {
			pr.onProg(pr.read, pr.total)
		}
	}
	return n, err
}
