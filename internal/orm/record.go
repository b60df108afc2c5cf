package orm

// Record es el handle de una instancia dentro de la transacción vigente.
// No carga datos: los métodos de instancia leen lo que necesitan vía el tx.
type Record struct {
	model *Model
	id    int64
	tx    Tx
}

// ID retorna el identificador de la instancia.
func (r *Record) ID() int64 { return r.id }

// ModelName retorna el nombre del modelo al que pertenece.
func (r *Record) ModelName() string { return r.model.Name() }

// Tx retorna la transacción a la que está atado el record.
func (r *Record) Tx() Tx { return r.tx }
