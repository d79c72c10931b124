package hpack

import "github.com/kadircet/gohttpcore/pkg/errors"

func errHuffman(msg string) error {
	return errors.NewHuffmanError("hpack.huffman", msg)
}

func errHpack(msg string) error {
	return errors.NewHpackError("hpack", msg)
}
