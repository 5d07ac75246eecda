package service

import "github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"

func requireSession(sess *entity.Session) error {
	if !sess.Valid() {
		return entity.ErrUnauthenticated
	}
	return nil
}
