package remote

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ErrNotFound is returned by Pull when no backup exists for the session.
var ErrNotFound = errors.New("no remote backup for session")

// ObjectAPI is the subset of the S3 client Backup uses.
type ObjectAPI interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Backup stores session documents in one bucket.
type Backup struct {
	// Client defaults to an S3 client built by Init from the default AWS config.
	Client ObjectAPI

	bucket string
	prefix string
	gzip   bool
}

// New returns a Backup for bucket. Call Init before use unless Client is set.
func New(bucket, prefix string, gzipObjects bool) *Backup {
	return &Backup{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		gzip:   gzipObjects,
	}
}

// Init loads the default AWS configuration and verifies the bucket is reachable.
func (b *Backup) Init(ctx context.Context) error {
	if b.Client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("remote init: load AWS config: %w", err)
		}
		b.Client = s3.NewFromConfig(cfg)
	}
	if _, err := b.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	}); err != nil {
		return fmt.Errorf("remote init: head bucket %s: %w", b.bucket, err)
	}
	return nil
}

// Key returns the object key for session id.
func (b *Backup) Key(id string) string {
	name := id + ".json"
	if b.gzip {
		name += ".gz"
	}
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

// Push uploads data as the backup for session id and returns the object key.
func (b *Backup) Push(ctx context.Context, id string, data []byte) (string, error) {
	key := b.Key(id)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if b.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return "", fmt.Errorf("gzip backup: %w", err)
		}
		if err := gw.Close(); err != nil {
			return "", fmt.Errorf("gzip backup: %w", err)
		}
		input.Body = bytes.NewReader(buf.Bytes())
		input.ContentEncoding = aws.String("gzip")
	}
	if _, err := b.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", b.bucket, key, err)
	}
	return key, nil
}

// Pull downloads the backup for session id.
func (b *Backup) Pull(ctx context.Context, id string) ([]byte, error) {
	key := b.Key(id)
	resp, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", b.bucket, key, err)
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if b.gzip {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("open compressed backup %s: %w", key, err)
		}
		defer gr.Close()
		rdr = gr
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", key, err)
	}
	return data, nil
}

// List returns the session IDs that have a backup under the prefix.
func (b *Backup) List(ctx context.Context) ([]string, error) {
	listPrefix := ""
	if b.prefix != "" {
		listPrefix = b.prefix + "/"
	}
	suffix := strings.TrimPrefix(b.Key(""), listPrefix)

	var ids []string
	pager := s3.NewListObjectsV2Paginator(b.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(listPrefix),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", b.bucket, listPrefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), listPrefix)
			if strings.Contains(name, "/") || !strings.HasSuffix(name, suffix) {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, suffix))
		}
	}
	return ids, nil
}
