package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"intlist/config"
	"intlist/types"
)

// S3Store keeps lists as text dumps in an S3 bucket, one object per name.
type S3Store struct {
	client s3iface.S3API
	bucket string
	prefix string
}

func NewS3Store(conf config.S3) (*S3Store, error) {
	awsConf := &aws.Config{}
	if conf.Region != "" {
		awsConf.Region = aws.String(conf.Region)
	}
	if conf.Endpoint != "" {
		awsConf.Endpoint = aws.String(conf.Endpoint)
		awsConf.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConf)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return newS3Store(s3.New(sess), conf), nil
}

func newS3Store(client s3iface.S3API, conf config.S3) *S3Store {
	return &S3Store{
		client: client,
		bucket: conf.Bucket,
		prefix: conf.Prefix,
	}
}

func (s *S3Store) Load(ctx context.Context, name string, list *types.IntegerList) (int, error) {
	if err := checkName("load", name); err != nil {
		return 0, err
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			err = fmt.Errorf("%w: %s", os.ErrNotExist, aerr.Message())
		}
		return 0, &types.FileError{Op: "load", Path: s.key(name), Err: err}
	}
	defer out.Body.Close()

	values, err := types.Decode(out.Body)
	if err != nil {
		return 0, &types.FileError{Op: "load", Path: s.key(name), Err: err}
	}

	list.Append(values...)
	return len(values), nil
}

func (s *S3Store) Save(ctx context.Context, name string, list *types.IntegerList) error {
	if err := checkName("save", name); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := types.Encode(&body, list); err != nil {
		return err
	}

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return &types.FileError{Op: "save", Path: s.key(name), Err: err}
	}
	return nil
}

func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) key(name string) string {
	return s.prefix + name
}
