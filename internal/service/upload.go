package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/permissions"
)

const maxImageSize = 5 << 20 // 5 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// FileStorage abstracts object storage operations for testability.
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// UploadService stores avatar and server icon images and hands back the
// content hash the profile records carry.
type UploadService struct {
	servers database.ServerRepository
	storage FileStorage
	perms   *PermissionChecker
}

// NewUploadService creates an UploadService.
func NewUploadService(servers database.ServerRepository, storage FileStorage, perms *PermissionChecker) *UploadService {
	return &UploadService{servers: servers, storage: storage, perms: perms}
}

// UploadResult holds the stored image's hash and public URL.
type UploadResult struct {
	Hash string `json:"hash"`
	URL  string `json:"url"`
}

// UploadAvatar stores a user avatar image keyed by content hash.
func (s *UploadService) UploadAvatar(ctx context.Context, userID int64, size int64, contentType string, r io.Reader) (*UploadResult, error) {
	data, err := readImage(r, size, contentType)
	if err != nil {
		return nil, err
	}

	hash := contentHash(data)
	key := fmt.Sprintf("avatars/%d/%s", userID, hash)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, NewError(ErrInternal, "UPLOAD_FAILED", "failed to store image")
	}

	return &UploadResult{Hash: hash, URL: s.storage.URL(key)}, nil
}

// UploadServerIcon stores a server icon image. Requires manageServer.
func (s *UploadService) UploadServerIcon(ctx context.Context, serverID, userID int64, size int64, contentType string, r io.Reader) (*UploadResult, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, userID, permissions.ManageServer); err != nil {
		return nil, err
	}

	data, err := readImage(r, size, contentType)
	if err != nil {
		return nil, err
	}

	hash := contentHash(data)
	key := fmt.Sprintf("icons/%d/%s", serverID, hash)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, NewError(ErrInternal, "UPLOAD_FAILED", "failed to store image")
	}

	return &UploadResult{Hash: hash, URL: s.storage.URL(key)}, nil
}

func readImage(r io.Reader, size int64, contentType string) ([]byte, error) {
	if size > maxImageSize {
		return nil, BadRequest("FILE_TOO_LARGE", "image must be under 5 MB")
	}
	if !allowedImageTypes[contentType] {
		return nil, BadRequest("INVALID_CONTENT_TYPE", "image type not allowed")
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if int64(len(data)) > maxImageSize {
		return nil, BadRequest("FILE_TOO_LARGE", "image must be under 5 MB")
	}
	return data, nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
