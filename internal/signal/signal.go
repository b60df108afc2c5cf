// Package signal implementa señales de ciclo de vida con observers síncronos.
//
// No hay dispatcher global: cada Signal mantiene su lista ordenada de
// receivers y los invoca en orden de registro. Un error de un receiver se
// propaga al emisor como cualquier otro error del pipeline.
package signal

import "sync"

// Receiver recibe la instancia de la aplicación como único payload.
type Receiver func(app any) error

// Signal es una señal nombrada con cero o más receivers registrados.
type Signal struct {
	name string

	mu        sync.RWMutex
	receivers []Receiver
}

// New crea una señal con el nombre dado.
func New(name string) *Signal {
	return &Signal{name: name}
}

// Name retorna el nombre de la señal.
func (s *Signal) Name() string { return s.name }

// Connect registra un receiver. Los receivers se invocan en orden de registro.
func (s *Signal) Connect(r Receiver) {
	if r == nil {
		return
	}
	s.mu.Lock()
	s.receivers = append(s.receivers, r)
	s.mu.Unlock()
}

// Send invoca todos los receivers de forma síncrona y en orden.
// Corta en el primer error y lo retorna: el fallo de un observer no se aísla.
func (s *Signal) Send(app any) error {
	s.mu.RLock()
	rs := make([]Receiver, len(s.receivers))
	copy(rs, s.receivers)
	s.mu.RUnlock()

	for _, r := range rs {
		if err := r(app); err != nil {
			return err
		}
	}
	return nil
}

// Lifecycle agrupa las dos señales que emite el pipeline por cada intento.
type Lifecycle struct {
	// TransactionStart se emite inmediatamente después de abrir la
	// transacción de un intento.
	TransactionStart *Signal
	// TransactionStop se emite antes de liberar la transacción,
	// sin importar el resultado del intento.
	TransactionStop *Signal
}

// NewLifecycle crea el par de señales transaction_start / transaction_stop.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		TransactionStart: New("transaction_start"),
		TransactionStop:  New("transaction_stop"),
	}
}
