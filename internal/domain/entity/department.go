package entity

// Department área de la organización a la que se imputa una solicitud de salida.
type Department struct {
	ID   int64
	Name string
	Code string
}
