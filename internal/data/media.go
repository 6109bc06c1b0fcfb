package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MediaStore stores uploaded images in a GridFS bucket. Files are named
// <owner>/<message>/<file> so one message's uploads sit under one prefix.
type MediaStore struct {
	bucket *mongo.GridFSBucket
}

// NewMediaStore returns a MediaStore over bucket.
func NewMediaStore(bucket *mongo.GridFSBucket) *MediaStore {
	return &MediaStore{bucket: bucket}
}

type mediaMetadata struct {
	Owner       string `bson:"owner"`
	MessageID   string `bson:"message_id"`
	ContentType string `bson:"content_type"`
}

// gridFSFile is the shape of a document in <bucket>.files.
type gridFSFile struct {
	ID         bson.ObjectID `bson:"_id"`
	Length     int64         `bson:"length"`
	UploadDate time.Time     `bson:"uploadDate"`
	Filename   string        `bson:"filename"`
	Metadata   mediaMetadata `bson:"metadata"`
}

func (f gridFSFile) mediaFile() *MediaFile {
	return &MediaFile{
		ID:          f.ID,
		FullPath:    f.Filename,
		ContentType: f.Metadata.ContentType,
		Size:        f.Length,
		OwnerID:     f.Metadata.Owner,
		MessageID:   f.Metadata.MessageID,
		UploadedAt:  f.UploadDate,
	}
}

// MediaPath builds the storage path of an upload.
func MediaPath(ownerID, messageID, fileName string) string {
	// keep only the last element so a client cannot write outside its prefix
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return ownerID + "/" + messageID + "/" + name
}

// MediaRef renders the store reference of a file id.
func MediaRef(id bson.ObjectID) string {
	return domain.MediaRefPrefix + id.Hex()
}

// ParseMediaRef extracts the file id from a store reference.
func ParseMediaRef(ref string) (bson.ObjectID, error) {
	hex, ok := strings.CutPrefix(ref, domain.MediaRefPrefix)
	if !ok {
		return bson.ObjectID{}, fmt.Errorf("not a media reference: %q", ref)
	}
	return bson.ObjectIDFromHex(hex)
}

// Upload stores r under MediaPath(ownerID, messageID, fileName).
func (s *MediaStore) Upload(ctx context.Context, ownerID, messageID, fileName, contentType string, r io.Reader) (*MediaFile, error) {
	fullPath := MediaPath(ownerID, messageID, fileName)
	meta := mediaMetadata{Owner: ownerID, MessageID: messageID, ContentType: contentType}

	id, err := s.bucket.UploadFromStream(ctx, fullPath, r, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", fullPath, err)
	}
	return s.Stat(ctx, id)
}

// Stat reads the metadata of a stored file.
func (s *MediaStore) Stat(ctx context.Context, id bson.ObjectID) (*MediaFile, error) {
	cursor, err := s.bucket.Find(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	var f gridFSFile
	if err := cursor.Decode(&f); err != nil {
		return nil, err
	}
	return f.mediaFile(), nil
}

// Download writes the content of file id to w.
func (s *MediaStore) Download(ctx context.Context, id bson.ObjectID, w io.Writer) (int64, error) {
	n, err := s.bucket.DownloadToStream(ctx, id, w)
	if errors.Is(err, mongo.ErrFileNotFound) {
		return 0, ErrNotFound
	}
	return n, err
}
