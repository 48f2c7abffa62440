package sqlinline

// The debit runs as three statements in one transaction. The account row is
// locked first, so a second delivery of the same job waits and then finds
// the charge row already present.

const QLockCreditAccount = `--sql 31ece4d9-c842-499a-a3d4-4ef1268d5ee1
select subscription_status, remaining_credits
from credit_accounts
where user_id = $1::text
for update;
`

// QInsertCreditCharge returns no row when the job was already charged.
const QInsertCreditCharge = `--sql 5b0e7d8a-2f43-4c19-9e6a-7d1c3b8f2a64
insert into credit_charges (job_id, user_id, charged_at)
values ($2::text, $1::text, now())
on conflict (job_id) do nothing
returning job_id;
`

const QConsumeCredit = `--sql c3a91f02-6e7b-4d55-8a1e-0f4b92d7e6c8
update credit_accounts
set remaining_credits = remaining_credits - 1,
    updated_at = now()
where user_id = $1::text
  and subscription_status = 'active'
  and remaining_credits > 0
returning remaining_credits;
`

const QSelectCreditAccount = `--sql ae0a69ed-0e04-4f0d-bd19-dd5104879ec4
select user_id, subscription_status, remaining_credits, updated_at
from credit_accounts
where user_id = $1::text;
`

// QUpsertCreditAccount sets the status and either replaces or tops up the
// balance depending on $4.
const QUpsertCreditAccount = `--sql 78316ec6-ed1c-4d8e-92ee-37c53a8ae6fc
insert into credit_accounts (user_id, subscription_status, remaining_credits, updated_at)
values ($1::text, $2::text, greatest($3::int, 0), now())
on conflict (user_id) do update set
    subscription_status = excluded.subscription_status,
    remaining_credits = case
        when $4::boolean then greatest(credit_accounts.remaining_credits + $3::int, 0)
        else excluded.remaining_credits
    end,
    updated_at = now()
returning user_id, subscription_status, remaining_credits, updated_at;
`
