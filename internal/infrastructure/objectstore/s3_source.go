// Package objectstore trae hojas de cálculo desde un bucket S3 compatible al directorio de ingesta.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/Leadius-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/Leadius-api/pkg/config"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

// S3API subconjunto del cliente S3 que se usa (permite fakes en tests).
type S3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source descarga al directorio local los objetos nuevos o cambiados bajo Prefix.
type S3Source struct {
	client S3API
	bucket string
	prefix string
	log    *logger.Logger
}

// NewS3Client construye el cliente con credenciales estáticas y endpoint opcional (MinIO, R2).
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cargar config AWS: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Source construye el origen remoto.
func NewS3Source(client S3API, bucket, prefix string, log *logger.Logger) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix, log: log}
}

// Name identifica el origen en logs.
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// Sync baja a dir cada hoja de cálculo remota que falte localmente o cuyo tamaño difiera.
// Devuelve cuántos archivos se descargaron. Un objeto que falla se registra y se salta.
func (s *S3Source) Sync(ctx context.Context, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("crear %s: %w", dir, err)
	}
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	downloaded := 0
	claimed := make(map[string]string)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return downloaded, fmt.Errorf("listar %s: %w", s.Name(), err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !spreadsheet.Supported(path.Base(key)) {
				continue
			}
			name := s.localName(key)
			if other, ok := claimed[name]; ok {
				s.log.Warn().Str("key", key).Str("other", other).Str("file", name).Msg("nombre local repetido, objeto omitido")
				continue
			}
			claimed[name] = key
			local := filepath.Join(dir, name)
			if st, err := os.Stat(local); err == nil && st.Size() == aws.ToInt64(obj.Size) {
				continue
			}
			if err := s.download(ctx, key, local); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("no se pudo descargar hoja de cálculo remota")
				continue
			}
			downloaded++
		}
	}
	return downloaded, nil
}

// localName aplana la clave relativa al prefijo: "leads/norr/a.csv" con prefijo "leads/" pasa a "norr_a.csv".
func (s *S3Source) localName(key string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, s.prefix), "/")
	if rel == "" {
		rel = path.Base(key)
	}
	return strings.ReplaceAll(rel, "/", "_")
}

// download escribe a un temporal y renombra, para que el escáner nunca vea un archivo a medias.
func (s *S3Source) download(ctx context.Context, key, local string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(local), ".download-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("copiar %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), local)
}
