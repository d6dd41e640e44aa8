package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/rocketsim/blobstore"
	"github.com/hupe1980/rocketsim/blobstore/minio"
	"github.com/hupe1980/rocketsim/blobstore/s3"
)

var errJournalURL = errors.New("invalid journal url")

// storeTarget is a parsed -journal value.
type storeTarget struct {
	Scheme   string
	Dir      string // file
	Endpoint string // minio
	Bucket   string // s3, minio
	Prefix   string // s3, minio
	Region   string // s3
	Secure   bool   // minio
}

// parseStoreURL accepts
//
//	mem://
//	file://<dir> or a plain path
//	s3://<bucket>[/<prefix>][?region=<region>&endpoint=<url>]
//	minio://<host:port>/<bucket>[/<prefix>][?insecure=true]
func parseStoreURL(raw string) (storeTarget, error) {
	if raw == "" {
		return storeTarget{}, fmt.Errorf("%w: empty", errJournalURL)
	}
	if !strings.Contains(raw, "://") {
		return storeTarget{Scheme: "file", Dir: filepath.Clean(raw)}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return storeTarget{}, fmt.Errorf("%w: %v", errJournalURL, err)
	}

	t := storeTarget{Scheme: u.Scheme}
	switch u.Scheme {
	case "mem":
		return t, nil
	case "file":
		t.Dir = filepath.Clean(u.Host + u.Path)
		if u.Host == "" && u.Path == "" {
			return storeTarget{}, fmt.Errorf("%w: %s has no directory", errJournalURL, raw)
		}
		return t, nil
	case "s3":
		if u.Host == "" {
			return storeTarget{}, fmt.Errorf("%w: %s has no bucket", errJournalURL, raw)
		}
		t.Bucket = u.Host
		t.Prefix = prefixOf(u.Path)
		t.Region = u.Query().Get("region")
		t.Endpoint = u.Query().Get("endpoint")
		return t, nil
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return storeTarget{}, fmt.Errorf("%w: %s needs host and bucket", errJournalURL, raw)
		}
		t.Endpoint = u.Host
		t.Bucket = bucket
		t.Prefix = prefixOf(prefix)
		t.Secure = true
		if v := u.Query().Get("insecure"); v != "" {
			insecure, err := strconv.ParseBool(v)
			if err != nil {
				return storeTarget{}, fmt.Errorf("%w: insecure=%q", errJournalURL, v)
			}
			t.Secure = !insecure
		}
		return t, nil
	default:
		return storeTarget{}, fmt.Errorf("%w: unsupported scheme %q", errJournalURL, u.Scheme)
	}
}

// prefixOf normalizes a URL path to a key prefix with a trailing slash.
func prefixOf(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func openStore(ctx context.Context, t storeTarget) (blobstore.Store, error) {
	switch t.Scheme {
	case "mem":
		return blobstore.NewMemoryStore(), nil
	case "file":
		return blobstore.NewLocalStore(t.Dir), nil
	case "s3":
		opts := []s3.Option{s3.WithPrefix(t.Prefix)}
		if t.Region != "" {
			opts = append(opts, s3.WithRegion(t.Region))
		}
		if t.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(t.Endpoint))
		}
		return s3.New(ctx, t.Bucket, opts...)
	case "minio":
		return minio.Dial(ctx, t.Endpoint, t.Bucket, t.Prefix, t.Secure)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", errJournalURL, t.Scheme)
	}
}
