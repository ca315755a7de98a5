package datastream

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "SLBENCH2"
// uint16   Version: 2
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次（key 升冪）：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Get,1=Put,2=Remove)
//   int64   Key

var (
	benchMagic   = [8]byte{'S', 'L', 'B', 'E', 'N', 'C', 'H', '2'}
	benchVersion = uint16(2)
)

// WriteFile 將 workload 寫成 bin 檔
func WriteFile(filename string, wl *Workload) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(file)
	if err := Encode(bw, wl); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	return bw.Flush()
}

// Encode 將 workload 以 SLBENCH2 格式寫入 w
func Encode(w io.Writer, wl *Workload) error {
	if wl == nil {
		return errors.New("nil workload")
	}
	le := binary.LittleEndian
	if _, err := w.Write(benchMagic[:]); err != nil {
		return err
	}
	header := []any{benchVersion, uint16(0), uint32(len(wl.Dist))}
	for _, v := range header {
		if err := binary.Write(w, le, v); err != nil {
			return err
		}
	}
	for _, k := range wl.Keys() {
		if err := binary.Write(w, le, k); err != nil {
			return err
		}
		if err := binary.Write(w, le, wl.Dist[k]); err != nil {
			return err
		}
	}
	if err := binary.Write(w, le, uint64(len(wl.Ops))); err != nil {
		return err
	}
	for _, op := range wl.Ops {
		if err := binary.Write(w, le, uint8(op.Type)); err != nil {
			return err
		}
		if err := binary.Write(w, le, op.Key); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile 讀取 bin 檔案，回傳分布與操作序列
func ReadFile(filename string) (*Workload, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	wl, err := Decode(bufio.NewReader(fd))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	return wl, nil
}

// Decode 從 r 讀取 SLBENCH2 格式的 workload
func Decode(r io.Reader) (*Workload, error) {
	le := binary.LittleEndian
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != benchMagic {
		return nil, errors.Newf("invalid magic: %q", magic)
	}
	var ver, reserved uint16
	if err := binary.Read(r, le, &ver); err != nil {
		return nil, err
	}
	if ver != benchVersion {
		return nil, errors.Newf("unsupported version: %d", ver)
	}
	if err := binary.Read(r, le, &reserved); err != nil {
		return nil, err
	}

	var distCount uint32
	if err := binary.Read(r, le, &distCount); err != nil {
		return nil, err
	}
	wl := &Workload{Dist: make(map[int64]float64, min(distCount, 1<<20))}
	for i := uint32(0); i < distCount; i++ {
		var key int64
		var weight float64
		if err := binary.Read(r, le, &key); err != nil {
			return nil, err
		}
		if err := binary.Read(r, le, &weight); err != nil {
			return nil, err
		}
		wl.Dist[key] = weight
	}

	var opCount uint64
	if err := binary.Read(r, le, &opCount); err != nil {
		return nil, err
	}
	// 預先配置的大小受限，避免損毀的標頭造成過大的配置
	wl.Ops = make([]Operation, 0, min(opCount, 1<<20))
	for i := uint64(0); i < opCount; i++ {
		var t uint8
		var key int64
		if err := binary.Read(r, le, &t); err != nil {
			return nil, err
		}
		if OperationType(t) > OpRemove {
			return nil, errors.Newf("op %d: unknown operation type %d", i, t)
		}
		if err := binary.Read(r, le, &key); err != nil {
			return nil, err
		}
		wl.Ops = append(wl.Ops, Operation{Type: OperationType(t), Key: key})
	}
	return wl, nil
}
