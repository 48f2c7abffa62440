package sqlinline

const QSelectJob = `--sql 9c1f672e-2c2e-4fd8-9e31-567ff6e871f6
select
    job_id,
    coalesce(user_id, ''),
    coalesce(user_group, ''),
    coalesce(file_name, ''),
    coalesce(file_extension, ''),
    coalesce(s3_key, ''),
    coalesce(status, ''),
    result,
    coalesce(error_message, ''),
    updated_at,
    completed_at
from jobs
where job_id = $1::text;
`

// QUpdateJobStatus keeps the stored result unless a new one is given. A
// COMPLETED write stamps completed_at and clears any earlier error.
const QUpdateJobStatus = `--sql 319bd2d1-fa92-4a6e-b72a-5180d47455be
update jobs
set status = $2::text,
    updated_at = now(),
    result = coalesce($3::jsonb, result),
    error_message = case
        when $2::text = 'COMPLETED' then null
        when $4::text <> '' then $4::text
        else error_message
    end,
    completed_at = case when $2::text = 'COMPLETED' then now() else completed_at end
where job_id = $1::text;
`
