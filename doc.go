// Package nsmigrate migrates compiled Java code between package namespaces,
// such as javax to jakarta.
//
// The transform engine lives in the [core] subpackage: a [core.Transformer]
// patches class file constant pools and renames resources. This package
// builds on it with mapping files, archive rewriting and module repository
// rewriting.
//
// # Quick Start
//
// Rewrite a web application with the built-in mapping:
//
//	t, err := core.New(nsmigrate.DefaultMapping())
//	if err != nil {
//	    return err
//	}
//	stats, err := nsmigrate.TransformArchiveFile(ctx, t, "app.war", "app-jakarta.war")
//
// Rewrite an application server module repository in place:
//
//	modules, err := nsmigrate.TransformModules(ctx, "/opt/server/modules",
//	    nsmigrate.ModulesWithArtifacts(t),
//	)
//
// # Mapping files
//
// Mappings use properties syntax with one from=to rule per line in
// path-separator form (javax/servlet=jakarta/servlet). Rule order is the
// match priority. The dot form used for string constants, service
// registrations and module names is derived automatically.
package nsmigrate
