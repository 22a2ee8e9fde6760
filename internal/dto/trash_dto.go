package dto

type TrashResponse struct {
	Notes     []*NoteResponse     `json:"notes"`
	Notebooks []*NotebookResponse `json:"notebooks"`
}

type EmptyTrashResponse struct {
	DeletedNotes     int  `json:"deleted_notes"`
	DeletedNotebooks int  `json:"deleted_notebooks"`
	NothingToDelete  bool `json:"nothing_to_delete"`
}
