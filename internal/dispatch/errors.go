package dispatch

import "errors"

// Taxonomía de errores del dispatch. El mapeo a status HTTP vive en la
// capa http; acá solo se distinguen las clases.
var (
	// ErrRouteNotFound: el router no matcheó ningún endpoint.
	// Se levanta antes de abrir cualquier transacción.
	ErrRouteNotFound = errors.New("no endpoint matched the request")

	// ErrMethodNotAllowed: la ruta existe pero no acepta el método.
	// También previo a cualquier transacción.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrEndpointNotFound: el endpoint no es una vista registrada ni un
	// "model.method" resoluble. Aborta el intento, no se reintenta.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrMissingActiveID: un endpoint de instancia sin active_id en los
	// argumentos de vista. Aborta el intento, no se reintenta.
	ErrMissingActiveID = errors.New("instance endpoint requires active_id")
)
