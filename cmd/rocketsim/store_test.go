package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rocketsim/blobstore"
)

func TestParseStoreURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want storeTarget
	}{
		{"Memory", "mem://", storeTarget{Scheme: "mem"}},
		{"PlainPath", "./journals/", storeTarget{Scheme: "file", Dir: "journals"}},
		{"FileAbsolute", "file:///var/lib/rocketsim", storeTarget{Scheme: "file", Dir: "/var/lib/rocketsim"}},
		{"FileRelative", "file://journals", storeTarget{Scheme: "file", Dir: "journals"}},
		{"S3Bucket", "s3://flight-logs", storeTarget{Scheme: "s3", Bucket: "flight-logs"}},
		{
			"S3Prefix",
			"s3://flight-logs/sim/2026?region=eu-central-1&endpoint=http://localhost:4566",
			storeTarget{Scheme: "s3", Bucket: "flight-logs", Prefix: "sim/2026/", Region: "eu-central-1", Endpoint: "http://localhost:4566"},
		},
		{
			"Minio",
			"minio://localhost:9000/flight-logs/sim",
			storeTarget{Scheme: "minio", Endpoint: "localhost:9000", Bucket: "flight-logs", Prefix: "sim/", Secure: true},
		},
		{
			"MinioInsecure",
			"minio://localhost:9000/flight-logs?insecure=true",
			storeTarget{Scheme: "minio", Endpoint: "localhost:9000", Bucket: "flight-logs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStoreURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStoreURLErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"ftp://host/dir",
		"file://",
		"s3://",
		"minio://localhost:9000",
		"minio://localhost:9000/bucket?insecure=maybe",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := parseStoreURL(raw)
			assert.ErrorIs(t, err, errJournalURL)
		})
	}
}

func TestOpenStoreLocal(t *testing.T) {
	ctx := context.Background()

	store, err := openStore(ctx, storeTarget{Scheme: "mem"})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, store)

	dir := filepath.Join(t.TempDir(), "journals")
	store, err = openStore(ctx, storeTarget{Scheme: "file", Dir: dir})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "runs/x.jsonl", []byte("{}\n")))

	names, err := store.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/x.jsonl"}, names)
}
