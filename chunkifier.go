package main

func Chunkify(text string, size int, overlap int) []string {
	l := len(text)
	if l == 0 {
		return []string{}
	}

	step := size - overlap
	pos := 0
	res := make([]string, 0, l/step+1)

	for {
		end := min(pos+size, l)
		res = append(res, text[pos:end])
		if end >= l {
			break
		}

		pos += step
	}

	return res
}

type DefaultChunkfier struct {
	chunkSize    int
	chunkOverlap int
}

func (c *DefaultChunkfier) Chunkify(text string) []string {
	return Chunkify(text, c.chunkSize, c.chunkOverlap)
}
