package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API 是 S3Storage 使用到的 S3 操作
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Region          string
	Bucket          string
	// Prefix 是所有物件 key 的前綴，相當於本機的媒體根目錄
	Prefix        string
	PublicBaseURL string
}

// S3Storage 將圖片存放在 S3 相容的物件儲存
type S3Storage struct {
	client         S3API
	bucket         string
	prefix         string
	publicEndpoint *url.URL
}

// NewS3Client 依照設定建立 S3 客戶端
func NewS3Client(ctx context.Context, config S3Config) (*s3.Client, error) {
	const op = "NewS3Client"
	region := config.Region
	if region == "" {
		region = "auto"
	}
	cfg, err := awsCfg.LoadDefaultConfig(
		ctx,
		awsCfg.WithBaseEndpoint(config.Endpoint),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, "")),
		awsCfg.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

func NewS3Storage(client S3API, bucket, prefix, publicBaseURL string) (*S3Storage, error) {
	const op = "NewS3Storage"
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	return &S3Storage{
		client:         client,
		bucket:         bucket,
		prefix:         strings.Trim(prefix, "/"),
		publicEndpoint: publicEndpoint,
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, dir, ext, contentType string, content []byte) (string, error) {
	const op = "S3Storage.Save"
	ref := path.Join(dir, newFileName(ext))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Path(ref)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload file to S3, err=%w", op, err)
	}
	return ref, nil
}

// Path 回傳參照對應的物件 key
func (s *S3Storage) Path(ref string) string {
	return path.Join(s.prefix, ref)
}

func (s *S3Storage) URL(ref string) string {
	uri := *s.publicEndpoint
	uri.Path = path.Join("/", uri.Path, s.Path(ref))
	return uri.String()
}

// List 列出目錄前綴下的物件 key，沒有任何物件時視為目錄不存在
func (s *S3Storage) List(ctx context.Context, dir string) ([]string, error) {
	const op = "S3Storage.List"
	prefix := s.Path(dir) + "/"
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to list objects, prefix=%s, err=%w", op, prefix, translateS3Error(err))
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			// 只列出目錄下一層的檔案
			if strings.Contains(strings.TrimPrefix(key, prefix), "/") || strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("[%s] Fail to list %s, err=%w", op, prefix, ErrDirectoryNotFound)
	}
	return keys, nil
}

// Remove 刪除物件，物件不存在時回傳 fs.ErrNotExist
func (s *S3Storage) Remove(ctx context.Context, key string) error {
	const op = "S3Storage.Remove"
	// DeleteObject 對不存在的物件不會報錯，所以先確認物件存在
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("[%s] Fail to remove %s, err=%w", op, key, translateS3Error(err))
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("[%s] Fail to remove %s, err=%w", op, key, translateS3Error(err))
	}
	return nil
}

// translateS3Error 將 S3 的錯誤轉換為 fs 的錯誤，讓呼叫端可以用同樣的方式處理
func translateS3Error(err error) error {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %w", fs.ErrPermission, err)
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
	}
	return err
}
