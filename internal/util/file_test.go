package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMimeTypeVideo(t *testing.T) {
	// 合法的 mp4 文件头：box 长度 + ftyp + 品牌标识
	mp4Header := []byte{0, 0, 0, 20, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0, 0, 0, 0, 'm', 'p', '4', '2'}

	mimeType, err := ValidateMimeType(bytes.NewReader(mp4Header), []string{MimeVideo})
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", mimeType)
}

func TestValidateMimeTypeRejectsMismatch(t *testing.T) {
	// 文本内容冒充视频扩展名时按文件头识破
	payload := []byte("#!/bin/sh\nrm -rf /tmp/x\n")

	mimeType, err := ValidateMimeType(bytes.NewReader(payload), []string{MimeVideo})
	require.Error(t, err)
	assert.NotEmpty(t, mimeType)
}

func TestValidateMimeTypePrefixMatch(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

	mimeType, err := ValidateMimeType(bytes.NewReader(pngHeader), []string{MimeImage, MimePDF})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
}
