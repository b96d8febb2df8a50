package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// On-disk layout (little endian):
//
//	magic     [4]byte "DSVI"
//	version   uint32
//	dimension uint32
//	count     uint64
//	vectors   count*dimension float32
//	ids       count int64
//	checksum  uint32 (CRC-32 IEEE of everything above)
const (
	fileMagic   = "DSVI"
	fileVersion = 1
	headerSize  = 4 + 4 + 4 + 8
	trailerSize = 4
)

// writeIndexFile writes vectors and ids to path through a temp file in the same
// directory followed by a rename, so path always holds a complete index.
func writeIndexFile(path string, dimensions int, vectors []float32, ids []int64) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	crc := crc32.NewIEEE()
	bw := bufio.NewWriterSize(io.MultiWriter(f, crc), 1<<16)

	var hdr [headerSize]byte
	copy(hdr[0:4], fileMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], fileVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(dimensions))
	binary.LittleEndian.PutUint64(hdr[12:20], uint64(len(ids)))
	if _, err = bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	var word [8]byte
	for _, v := range vectors {
		binary.LittleEndian.PutUint32(word[:4], math.Float32bits(v))
		if _, err = bw.Write(word[:4]); err != nil {
			return fmt.Errorf("write vectors: %w", err)
		}
	}
	for _, id := range ids {
		binary.LittleEndian.PutUint64(word[:], uint64(id))
		if _, err = bw.Write(word[:]); err != nil {
			return fmt.Errorf("write ids: %w", err)
		}
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	binary.LittleEndian.PutUint32(word[:4], crc.Sum32())
	if _, err = f.Write(word[:4]); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("sync index file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename index file: %w", err)
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry after a rename. Not every platform
// supports fsync on directories, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// readIndexFile decodes the index at path. Any inconsistency is reported as ErrCorruptIndex.
func readIndexFile(path string, dimensions int) ([]float32, []int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read index file: %w", err)
	}
	if len(data) < headerSize+trailerSize {
		return nil, nil, corruptf("%s: file too short (%d bytes)", path, len(data))
	}
	if string(data[0:4]) != fileMagic {
		return nil, nil, corruptf("%s: bad magic %q", path, data[0:4])
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != fileVersion {
		return nil, nil, corruptf("%s: unsupported version %d", path, v)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	if dim != dimensions {
		return nil, nil, corruptf("%s: vectors have dimension %d, index expects %d", path, dim, dimensions)
	}
	count := binary.LittleEndian.Uint64(data[12:20])

	body := uint64(len(data) - headerSize - trailerSize)
	perEntry := uint64(dim)*4 + 8
	if count > body/perEntry || count*perEntry != body {
		return nil, nil, corruptf("%s: %d entries declared but %d payload bytes present (vectors and ids disagree)", path, count, body)
	}
	sumAt := len(data) - trailerSize
	if got, want := crc32.ChecksumIEEE(data[:sumAt]), binary.LittleEndian.Uint32(data[sumAt:]); got != want {
		return nil, nil, corruptf("%s: checksum mismatch", path)
	}

	n := int(count)
	vectors := make([]float32, n*dim)
	off := headerSize
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(binary.LittleEndian.Uint64(data[off : off+8]))
		off += 8
	}
	return vectors, ids, nil
}
