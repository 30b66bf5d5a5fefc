// Package config manages the repository-local configuration keys this
// implementation consumes and the on-disk state of an interrupted
// operation, following the teacher's pattern of a flat JSON file under
// .git/ rather than an INI parser.
package config
