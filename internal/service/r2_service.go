package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/contentdesk/configs"
)

type R2Service interface {
	Upload(ctx context.Context, key string, file []byte, filetype string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(fileURL string) (string, bool)
}

type r2Service struct {
	config cfg.Config

	once   sync.Once
	client *s3.Client
	err    error
}

func NewR2Service(cfg cfg.Config) R2Service {
	return &r2Service{config: cfg}
}

func (r *r2Service) R2Client(ctx context.Context) (*s3.Client, error) {
	r.once.Do(func() {
		awsCfg, err := config.LoadDefaultConfig(ctx,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
			config.WithRegion("auto"),
		)
		if err != nil {
			slog.Info(err.Error())
			r.err = err
			return
		}

		r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
		})
	})
	return r.client, r.err
}

// Upload stores file under key and returns its public URL.
func (r *r2Service) Upload(ctx context.Context, key string, file []byte, filetype string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(filetype),
	}

	client, err := r.R2Client(ctx)
	if err != nil {
		return "", err
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return r.publicURL(key), nil
}

func (r *r2Service) Delete(ctx context.Context, key string) error {
	client, err := r.R2Client(ctx)
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// KeyFromURL reports the object key behind a URL produced by Upload.
func (r *r2Service) KeyFromURL(fileURL string) (string, bool) {
	prefix := strings.TrimRight(r.config.R2.PublicURL, "/") + "/"
	if r.config.R2.PublicURL == "" || !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(fileURL, prefix)
	return key, key != ""
}

func (r *r2Service) publicURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(r.config.R2.PublicURL, "/"), key)
}
