// Package backup copies an account's files to an S3-compatible bucket.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("backup is not configured")

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
	now = time.Now
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type accountFiles interface {
	Lookup(ctx context.Context, username string) (models.Account, error)
	Files(acc models.Account) []string
}

// Settings locate the bucket. AccessKey and SecretKey are optional; without
// them the default AWS credential chain is used.
type Settings struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type Service struct {
	settings Settings
	accounts accountFiles
	logger   logging.Logger
	client   putObjectAPI
}

func NewService(settings Settings, accounts accountFiles, logger logging.Logger) *Service {
	return &Service{settings: settings, accounts: accounts, logger: logger.With("component", "backup")}
}

// Enabled reports whether a bucket is configured.
func (s *Service) Enabled() bool { return s.settings.Bucket != "" }

func (s *Service) getClient(ctx context.Context) (putObjectAPI, error) {
	if s.client != nil {
		return s.client, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(s.settings.Region)}
	if s.settings.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.settings.AccessKey,
			s.settings.SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.settings.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return s.client, nil
}

// Key is the object key of file in the backup of username taken at t.
func Key(username string, t time.Time, file string) string {
	return path.Join("backups", username, t.UTC().Format("20060102-150405"), file)
}

// Backup uploads every existing file of the account and returns the object
// keys written.
func (s *Service) Backup(ctx context.Context, username string) ([]string, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	acc, err := s.accounts.Lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	taken := now()
	var keys []string
	for _, p := range s.accounts.Files(acc) {
		key := Key(username, taken, filepath.Base(p))
		uploaded, err := s.upload(ctx, client, p, key)
		if err != nil {
			s.logger.Error(ctx, "backup failed", "username", username, "key", key, "err", err)
			return keys, err
		}
		if uploaded {
			keys = append(keys, key)
		}
	}

	s.logger.Info(ctx, "backup done", "username", username, "objects", len(keys))
	return keys, nil
}

func (s *Service) upload(ctx context.Context, client putObjectAPI, file, key string) (bool, error) {
	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.settings.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(file)),
	})
	if err != nil {
		return false, fmt.Errorf("put %s: %w", key, err)
	}
	return true, nil
}

func contentType(file string) string {
	switch filepath.Ext(file) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
