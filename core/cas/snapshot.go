package cas

import (
	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
)

// PutSnapshot stores the JSON form of a collation table.
func (s *Store) PutSnapshot(ct *ctdata.CtData) (Hashes, error) {
	data, err := ct.Encode()
	if err != nil {
		return Hashes{}, apperrors.Wrap(err, "encode snapshot")
	}
	return s.PutWithBlake3(data)
}

// GetSnapshot loads a collation table by the SHA-256 of its JSON form.
func (s *Store) GetSnapshot(hash string) (*ctdata.CtData, error) {
	data, err := s.Get(hash)
	if err != nil {
		return nil, err
	}
	return ctdata.Decode(data)
}
