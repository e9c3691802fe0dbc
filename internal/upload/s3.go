package upload

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/debemdeboas/folio/internal/config"
)

// putObjectAPI is the part of the S3 client the uploader uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores images in an S3 compatible bucket (AWS, R2, MinIO).
type S3Uploader struct {
	client        putObjectAPI
	bucket        string
	publicBaseURL string
}

func NewS3Uploader(ctx context.Context, cfg config.UploadConfig, accessKeyID, accessKeySecret string) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(client, cfg)
}

func newS3Uploader(client putObjectAPI, cfg config.UploadConfig) (*S3Uploader, error) {
	base, err := publicBaseURL(cfg)
	if err != nil {
		return nil, err
	}
	return &S3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
	}, nil
}

// publicBaseURL is where uploaded objects can be fetched from: the configured
// CDN, the custom endpoint, or the bucket's AWS virtual host.
func publicBaseURL(cfg config.UploadConfig) (string, error) {
	base := cfg.PublicBaseURL
	switch {
	case base != "":
	case cfg.Endpoint != "":
		base = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	case cfg.Region != "" && cfg.Region != "auto":
		base = "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
	default:
		return "", ErrNoPublicURL
	}

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrNoPublicURL, base)
	}
	return strings.TrimSuffix(base, "/"), nil
}

func (u *S3Uploader) Upload(ctx context.Context, img *Image) (string, error) {
	key := img.Key()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          img.Reader(),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	uploadLogger.Info().
		Str("bucket", u.bucket).
		Str("key", key).
		Str("name", img.Name).
		Int("bytes", len(img.Data)).
		Msg("Image uploaded")

	return u.publicBaseURL + "/" + key, nil
}
