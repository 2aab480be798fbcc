// Package dicom counts the instances a DICOM service exposes through its changefeed.
//
// The expected count is the number of changefeed entries whose action is Create
// and whose state is Current, read in fixed offset windows from zero up to the
// latest sequence.
package dicom
