package recordloader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"trade-producer/pkg/common_errors"

	"github.com/Jeffail/gabs/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

const (
	ID_FIELD       = "id"
	MAX_LINE_BYTES = 16 * 1024 * 1024
	S3_SCHEME      = "s3://"
)

// Load reads newline-delimited JSON objects from r and groups them by
// their id field. Blank lines are skipped; any other malformed line fails
// the whole load.
func Load(r io.Reader) (Index, error) {
	idx := make(Index)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MAX_LINE_BYTES)
	lineNo := 0
	for scanner.Scan() {
		lineNo += 1
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		rec, err := gabs.ParseJSONDecoder(dec)
		if err != nil {
			return nil, xerrors.Errorf("line %d: %w", lineNo, err)
		}
		id, err := recordID(rec)
		if err != nil {
			return nil, xerrors.Errorf("line %d: %w", lineNo, err)
		}
		idx[id] = append(idx[id], rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("read records: %w", err)
	}
	return idx, nil
}

func recordID(rec *gabs.Container) (string, error) {
	if _, isObj := rec.Data().(map[string]interface{}); !isObj || !rec.Exists(ID_FIELD) {
		return "", common_errors.ErrMissingRecordID
	}
	switch v := rec.S(ID_FIELD).Data().(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", common_errors.ErrMissingRecordID
	}
}

func LoadFile(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("open records %s: %w", path, err)
	}
	defer f.Close()
	idx, err := Load(f)
	if err != nil {
		return nil, xerrors.Errorf("load records %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("ids", idx.Len()).Int("records", idx.NumRecords()).Msg("loaded records")
	return idx, nil
}

func LoadObject(ctx context.Context, mc *minio.Client, bucket, object string) (Index, error) {
	obj, err := mc.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, xerrors.Errorf("get object %s/%s: %w", bucket, object, err)
	}
	defer obj.Close()
	idx, err := Load(obj)
	if err != nil {
		return nil, xerrors.Errorf("load records %s/%s: %w", bucket, object, err)
	}
	log.Info().Str("bucket", bucket).Str("object", object).Int("ids", idx.Len()).
		Int("records", idx.NumRecords()).Msg("loaded records")
	return idx, nil
}

// NewMinioClientFromEnv builds a client from MINIO_ADDR, MINIO_ACCESS_KEY,
// MINIO_SECRET_KEY and MINIO_SECURE.
func NewMinioClientFromEnv() (*minio.Client, error) {
	addr := os.Getenv("MINIO_ADDR")
	if addr == "" {
		return nil, xerrors.New("MINIO_ADDR is not set")
	}
	secure := os.Getenv("MINIO_SECURE")
	return minio.New(addr, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: secure == "true" || secure == "1",
	})
}

// SplitS3URI splits s3://bucket/key/with/slashes into bucket and object.
func SplitS3URI(uri string) (bucket string, object string, ok bool) {
	if !strings.HasPrefix(uri, S3_SCHEME) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, S3_SCHEME)
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// Open loads from object storage for s3:// locations and from the local
// file system otherwise.
func Open(ctx context.Context, location string) (Index, error) {
	if strings.HasPrefix(location, S3_SCHEME) {
		bucket, object, ok := SplitS3URI(location)
		if !ok {
			return nil, xerrors.Errorf("malformed object location %q", location)
		}
		mc, err := NewMinioClientFromEnv()
		if err != nil {
			return nil, err
		}
		return LoadObject(ctx, mc, bucket, object)
	}
	return LoadFile(location)
}
